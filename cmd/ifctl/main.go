// Command ifctl validates data documents against declarative input filter
// specs.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/filterware/inputfilter/inputfilter"
	"github.com/filterware/inputfilter/internal/log"
	"github.com/filterware/inputfilter/plugin/manager"
	v1 "github.com/filterware/inputfilter/spec/v1"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ifctl",
		Short:         "ifctl filters and validates data documents against input filter specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	log.RegisterLoggingFlags(cmd)
	cmd.AddCommand(newValidateCmd(), newSchemaCmd())
	return cmd
}

func newValidateCmd() *cobra.Command {
	var specPath, dataPath string
	cmd := &cobra.Command{
		Use:   "validate --spec spec.yaml --data data.yaml",
		Short: "build an input filter from a spec and validate a data document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := log.GetBaseLogger(cmd)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			specData, err := os.ReadFile(specPath)
			if err != nil {
				return fmt.Errorf("could not read spec: %w", err)
			}
			dataDoc, err := os.ReadFile(dataPath)
			if err != nil {
				return fmt.Errorf("could not read data document: %w", err)
			}

			pm := manager.New(manager.WithLogger(logger))
			base, err := pm.GetInputFilter(inputfilter.DefaultServiceName)
			if err != nil {
				return err
			}
			factory := base.(*inputfilter.Base).Factory()

			f, err := factory.NewFromDocument(specData)
			if err != nil {
				return err
			}

			var data any
			if err := yaml.Unmarshal(dataDoc, &data); err != nil {
				return fmt.Errorf("could not parse data document: %w", err)
			}
			if err := f.SetData(data); err != nil {
				return err
			}

			if err := f.Validate(); err != nil {
				printMessages(cmd, f.Messages())
				return err
			}

			values, err := json.MarshalIndent(f.Values(), "", "  ")
			if err != nil {
				return fmt.Errorf("could not render filtered values: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(values))
			return nil
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "path to the input filter spec (YAML or JSON)")
	cmd.Flags().StringVar(&dataPath, "data", "", "path to the data document (YAML or JSON)")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "print the JSON schema for v1 input filter specs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := v1.GetJSONSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	}
}

func printMessages(cmd *cobra.Command, messages map[string][]string) {
	names := make([]string, 0, len(messages))
	for name := range messages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, msg := range messages[name] {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, msg)
		}
	}
}
