package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/basher83/zammad-mcp/internal/api"
	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/output"
)

// newCallCmd is a debugging passthrough to the raw REST API, useful
// when a tool response looks wrong and the question is whether Zammad
// or this server shaped it that way.
func newCallCmd() *cobra.Command {
	var (
		method string
		body   string
		jqExpr string
	)

	cmd := &cobra.Command{
		Use:   "call <path>",
		Short: "Perform a raw API request (debugging)",
		Long:  "Perform a raw request against the configured Zammad instance and print the JSON response. Paths are relative to /api/v1, e.g. 'tickets/1' or 'users/me'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := api.NewClient(cfg)
			ctx := cmd.Context()

			var payload any
			if body != "" {
				if err := json.Unmarshal([]byte(body), &payload); err != nil {
					return output.ErrValidation("body", "request body is not valid JSON")
				}
			}

			var resp *api.Response
			switch strings.ToUpper(method) {
			case "GET":
				resp, err = client.Get(ctx, args[0])
			case "POST":
				resp, err = client.Post(ctx, args[0], payload)
			case "PUT":
				resp, err = client.Put(ctx, args[0], payload)
			case "DELETE":
				resp, err = client.Delete(ctx, args[0])
			default:
				return output.ErrValidation("method", "must be one of: GET, POST, PUT, DELETE")
			}
			if err != nil {
				return err
			}

			var decoded any
			if len(resp.Data) > 0 {
				if err := json.Unmarshal(resp.Data, &decoded); err != nil {
					cmd.Println(string(resp.Data))
					return nil
				}
			}

			if jqExpr != "" {
				return printFiltered(cmd, decoded, jqExpr)
			}
			return printJSON(cmd, decoded)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&body, "body", "d", "", "JSON request body")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "Filter the response with a jq expression")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	cmd.Println(string(raw))
	return nil
}

func printFiltered(cmd *cobra.Command, v any, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return output.ErrValidation("jq", "invalid jq expression: "+err.Error())
	}
	iter := query.Run(v)
	for {
		item, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := item.(error); isErr {
			return output.ErrValidation("jq", err.Error())
		}
		if err := printJSON(cmd, item); err != nil {
			return err
		}
	}
	return nil
}
