package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewFlowCmd создаёт группу команд для управления flows внутри цепочки.
func NewFlowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Manage flows within a chain",
	}

	cmd.AddCommand(
		newFlowListCmd(clientFn, outputFn),
		newFlowImportCmd(clientFn, outputFn),
		newFlowShowCmd(clientFn, outputFn),
		newFlowDeleteCmd(clientFn, outputFn),
		newFlowRunCmd(clientFn, outputFn),
	)

	return cmd
}

var flowHeaders = []string{"ID", "NAME", "NODES", "EDGES", "STATUS", "CREATED"}

func flowRow(f *FlowResponse) []string {
	return []string{
		f.ID, f.Name,
		strconv.Itoa(len(f.Nodes)), strconv.Itoa(len(f.Edges)),
		f.Status, f.CreatedAt,
	}
}

func newFlowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list CHAIN_ID",
		Short: "List flows in a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			flows, err := client.ListFlows(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(flows))
			for i := range flows {
				rows[i] = flowRow(&flows[i])
			}

			out.Print(flowHeaders, rows, flows)
			return nil
		},
	}
}

func newFlowImportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var docFile string

	cmd := &cobra.Command{
		Use:   "import CHAIN_ID",
		Short: "Import a flow document into a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(docFile)
			if err != nil {
				return fmt.Errorf("failed to read flow document: %w", err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("flow document is not valid JSON")
			}

			flow, err := client.ImportFlow(args[0], json.RawMessage(data))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow imported: %s", flow.ID))
			out.Print(flowHeaders, [][]string{flowRow(flow)}, flow)
			return nil
		},
	}

	cmd.Flags().StringVar(&docFile, "file", "", "Path to flow document JSON (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newFlowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show CHAIN_ID FLOW_ID",
		Short: "Show flow details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			flow, err := client.GetFlow(args[0], args[1])
			if err != nil {
				return err
			}

			out.Print(flowHeaders, [][]string{flowRow(flow)}, flow)
			return nil
		},
	}
}

func newFlowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CHAIN_ID FLOW_ID",
		Short: "Delete a flow from a chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteFlow(args[0], args[1]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow deleted: %s", args[1]))
			return nil
		},
	}
}

func newFlowRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputsJSON string

	cmd := &cobra.Command{
		Use:   "run CHAIN_ID FLOW_ID",
		Short: "Run a single flow and wait for its result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var inputs []any
			if inputsJSON != "" {
				if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
					return fmt.Errorf("invalid --inputs, expected JSON array: %w", err)
				}
			}

			result, err := client.RunFlow(args[0], args[1], inputs)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow finished: %s (execution %s)", result.Status, result.ExecutionID))
			out.NodeResults(result.Results, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputsJSON, "inputs", "", "Root inputs as a JSON array")

	return cmd
}
