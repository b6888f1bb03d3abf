package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewChainCmd создаёт группу команд для управления цепочками.
func NewChainCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage flow chains",
	}

	cmd.AddCommand(
		newChainListCmd(clientFn, outputFn),
		newChainCreateCmd(clientFn, outputFn),
		newChainShowCmd(clientFn, outputFn),
		newChainUpdateCmd(clientFn, outputFn),
		newChainDeleteCmd(clientFn, outputFn),
		newChainRunCmd(clientFn, outputFn),
		newChainExportCmd(clientFn, outputFn),
		newChainImportCmd(clientFn, outputFn),
	)

	return cmd
}

func chainRow(c *ChainResponse) []string {
	return []string{
		c.ID, c.Name, strconv.Itoa(len(c.FlowIDs)),
		c.SelectedFlowID, c.Status, c.CreatedAt,
	}
}

var chainHeaders = []string{"ID", "NAME", "FLOWS", "SELECTED", "STATUS", "CREATED"}

func newChainListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			chains, err := client.ListChains()
			if err != nil {
				return err
			}

			rows := make([][]string, len(chains))
			for i := range chains {
				rows[i] = chainRow(&chains[i])
			}

			out.Print(chainHeaders, rows, chains)
			return nil
		},
	}
}

func newChainCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var flowIDs string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateChainRequest{Name: name}
			if flowIDs != "" {
				req.FlowIDs = strings.Split(flowIDs, ",")
			}

			chain, err := client.CreateChain(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Chain created: %s", chain.ID))
			out.Print(chainHeaders, [][]string{chainRow(chain)}, chain)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Chain name (required)")
	cmd.Flags().StringVar(&flowIDs, "flows", "", "Comma-separated flow IDs")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newChainShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show chain details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			chain, err := client.GetChain(args[0])
			if err != nil {
				return err
			}

			out.Print(chainHeaders, [][]string{chainRow(chain)}, chain)
			return nil
		},
	}
}

func newChainUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var flowIDs string
	var selected string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateChainRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("flows") {
				ids := strings.Split(flowIDs, ",")
				req.FlowIDs = &ids
			}
			if cmd.Flags().Changed("selected") {
				req.SelectedFlowID = &selected
			}

			chain, err := client.UpdateChain(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Chain updated")
			out.Print(chainHeaders, [][]string{chainRow(chain)}, chain)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New chain name")
	cmd.Flags().StringVar(&flowIDs, "flows", "", "Comma-separated flow IDs (replaces the list)")
	cmd.Flags().StringVar(&selected, "selected", "", "Flow ID whose results represent the chain")

	return cmd
}

func newChainDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteChain(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Chain deleted: %s", args[0]))
			return nil
		},
	}
}

func newChainRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputsJSON string

	cmd := &cobra.Command{
		Use:   "run ID",
		Short: "Run a chain and wait for its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var inputs []any
			if inputsJSON != "" {
				if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
					return fmt.Errorf("invalid --inputs, expected JSON array: %w", err)
				}
			}

			result, err := client.RunChain(args[0], inputs)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Chain finished: %s", result.Status))
			out.NodeResults(result.Results, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputsJSON, "inputs", "", "Root inputs as a JSON array")

	return cmd
}

func newChainExportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var structureOnly bool
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all chains with their flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bundle, err := client.Export(structureOnly)
			if err != nil {
				return err
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, bundle, 0o644); err != nil {
					return fmt.Errorf("failed to write bundle: %w", err)
				}
				out.Success(fmt.Sprintf("Bundle written to %s", outFile))
				return nil
			}

			var pretty any
			if err := json.Unmarshal(bundle, &pretty); err != nil {
				return err
			}
			out.JSON(pretty)
			return nil
		},
	}

	cmd.Flags().BoolVar(&structureOnly, "structure-only", false, "Strip results and inputs from the export")
	cmd.Flags().StringVar(&outFile, "out", "", "Write bundle to file instead of stdout")

	return cmd
}

func newChainImportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var bundleFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bundle of chains and flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(bundleFile)
			if err != nil {
				return fmt.Errorf("failed to read bundle file: %w", err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("bundle file is not valid JSON")
			}

			if err := client.Import(json.RawMessage(data)); err != nil {
				return err
			}

			out.Success("Bundle imported")
			return nil
		},
	}

	cmd.Flags().StringVar(&bundleFile, "file", "", "Path to bundle JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}
