package main

import (
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easegress-io/easegress-go-sdk/host"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the plugin once against a request",
	Long: `Run the plugin of a filter spec against a single HTTP request and print
the response it produced.

Example:
  egwasm run --spec filter.yaml --url http://localhost/api -H 'X-User: bob'`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("spec", "s", "", "Filter spec file (.yaml, .toml or .json)")
	runCmd.Flags().StringP("url", "u", "http://localhost/", "Request URL")
	runCmd.Flags().StringP("method", "X", http.MethodGet, "Request method")
	runCmd.Flags().StringArrayP("header", "H", nil, "Request header 'Name: value' (repeatable)")
	runCmd.Flags().StringP("data", "d", "", "Request body")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	f, cleanup, err := loadFilter(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ex := host.NewExchange(req)
	code, err := f.Handle(ctx, ex)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), code, ex)
	return nil
}

func buildRequest(cmd *cobra.Command) (*http.Request, error) {
	url, _ := cmd.Flags().GetString("url")
	method, _ := cmd.Flags().GetString("method")
	headers, _ := cmd.Flags().GetStringArray("header")
	data, _ := cmd.Flags().GetString("data")

	req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(method), url, strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.RemoteAddr = "127.0.0.1:0"
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return req, nil
}

func printResult(w io.Writer, code int32, ex *host.Exchange) {
	resp := ex.Response
	fmt.Fprintf(w, "result: %d\n", code)
	fmt.Fprintf(w, "status: %d\n", resp.StatusCode)
	if tags := ex.Tags(); len(tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(tags, ", "))
	}
	for _, name := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)
	_, _ = w.Write(resp.Body)
}
