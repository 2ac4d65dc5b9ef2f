package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long:  "Prints the effective configuration after defaults, file, and environment merge, with every path resolved to an absolute location.",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(cfg)
		return nil
	}

	if path := resolveConfigPath(); path != "" {
		fmt.Printf("# config file: %s\n", path)
	} else {
		fmt.Println("# config file: none (defaults)")
	}
	enc := toml.NewEncoder(os.Stdout)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
