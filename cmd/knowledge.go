package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adaptive-signal/adaptive-signal/sim"
)

// knowledgeCmd prints the allocation rules the controller would use
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Print the effective allocation rules as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := writeKnowledge(os.Stdout, sim.LoadKnowledgeOrDefault(knowledgePath)); err != nil {
			logrus.Fatalf("Failed to print knowledge config: %v", err)
		}
	},
}

func writeKnowledge(w io.Writer, k sim.KnowledgeConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(k); err != nil {
		return fmt.Errorf("encoding knowledge config: %w", err)
	}
	return enc.Close()
}
