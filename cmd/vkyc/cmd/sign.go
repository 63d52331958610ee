package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vkyc/cmd/internal/auth/hmacauth"
)

var (
	signAPIKey   string
	signSecret   string
	signBodyFile string
	signCurl     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print HMAC request headers for a partner request body",
	Long: `Sign a request body the way an API client must before calling
POST /api/verification-sessions. The body is read from --body (or stdin when
--body is "-") and must be sent byte-for-byte as signed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if signSecret == "" {
			signSecret = os.Getenv("VKYC_SIGN_SECRET")
		}
		if strings.TrimSpace(signAPIKey) == "" || signSecret == "" {
			return errors.New("--api-key and --secret (or VKYC_SIGN_SECRET) are required")
		}

		if signCurl != "" && (signBodyFile == "" || signBodyFile == "-") {
			return errors.New("--curl needs --body <file> so the printed command sends the signed bytes")
		}

		body, err := readBody(cmd.InOrStdin(), signBodyFile)
		if err != nil {
			return err
		}

		headers := hmacauth.SignHeaders(signAPIKey, signSecret, body, time.Now())
		names := make([]string, 0, len(headers))
		for k := range headers {
			names = append(names, k)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		if signCurl != "" {
			fmt.Fprintf(out, "curl -sS -X POST %q -H 'Content-Type: application/json'", signCurl)
			for _, k := range names {
				fmt.Fprintf(out, " -H '%s: %s'", k, headers.Get(k))
			}
			fmt.Fprintf(out, " --data-binary %q\n", "@"+signBodyFile)
			return nil
		}
		for _, k := range names {
			fmt.Fprintf(out, "%s: %s\n", k, headers.Get(k))
		}
		return nil
	},
}

func readBody(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read body file: %w", err)
	}
	return b, nil
}

func init() {
	signCmd.Flags().StringVar(&signAPIKey, "api-key", "", "partner API key")
	signCmd.Flags().StringVar(&signSecret, "secret", "", "partner shared secret (default $VKYC_SIGN_SECRET)")
	signCmd.Flags().StringVarP(&signBodyFile, "body", "b", "-", "request body file, or - for stdin")
	signCmd.Flags().StringVar(&signCurl, "curl", "", "print a curl command against this URL instead of bare headers (requires --body <file>)")
	rootCmd.AddCommand(signCmd)
}
