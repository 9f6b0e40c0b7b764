package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store API keys in the OS keychain and write a config file",
	Long: `Walk through credential setup with secure storage.

Secrets (GitHub token, OpenAI and Gemini API keys) go to the OS keychain and
are never written to the config file. Environment variables such as
GITHUB_TOKEN and OPENAI_API_KEY still take precedence.

Examples:
  heatmap configure
  heatmap configure --print
  heatmap configure --delete openai-api-key`,
	RunE: runConfigure,
}

var (
	printConfig bool
	deleteItem  string
	writeConfig bool
)

func init() {
	configureCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration (secrets masked) and exit")
	configureCmd.Flags().StringVar(&deleteItem, "delete", "", "remove one keychain item: "+strings.Join(config.KeyringItems, ", "))
	configureCmd.Flags().BoolVar(&writeConfig, "write", false, "save the effective configuration to ~/.heatmap/config.yaml")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	km := config.NewKeyringManager()

	if printConfig {
		return printEffectiveConfig(out)
	}

	if deleteItem != "" {
		if !isKeyringItem(deleteItem) {
			return errors.ConfigErrorf("unknown keychain item %q", deleteItem)
		}
		if err := km.Delete(deleteItem); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ %s removed from OS keychain\n", deleteItem)
		return nil
	}

	fmt.Fprintln(out, "🔧 heatmap configuration")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)

	if !km.IsAvailable() {
		fmt.Fprintln(out, "⚠️  OS keychain not available (headless system or Linux without libsecret)")
		fmt.Fprintln(out, "   Set GITHUB_TOKEN, OPENAI_API_KEY or GEMINI_API_KEY in the environment or a .env file instead.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	prompts := map[string]string{
		config.ItemGitHubToken: "GitHub token (for --source github)",
		config.ItemOpenAIKey:   "OpenAI API key (for --classifier openai)",
		config.ItemGeminiKey:   "Gemini API key (for --classifier gemini)",
	}
	for _, item := range config.KeyringItems {
		current, _ := km.Get(item)
		fmt.Fprintf(out, "%s\n", prompts[item])
		fmt.Fprintf(out, "Current: %s\n", config.MaskSecret(current))
		fmt.Fprint(out, "New value (Enter to keep): ")

		secret, err := readSecret(reader)
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read %s: %w", item, err)
		}
		if secret == "" {
			continue
		}
		if err := km.Set(item, secret); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ %s saved to OS keychain\n\n", item)
	}

	if writeConfig {
		homeDir, _ := os.UserHomeDir()
		path := filepath.Join(homeDir, ".heatmap", "config.yaml")
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Configuration saved to %s\n", path)
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printEffectiveConfig(out io.Writer) error {
	data, err := cfg.Redacted().YAML()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", data)
	fmt.Fprintf(out, "# github token:   %s\n", config.MaskSecret(cfg.GitHub.Token))
	fmt.Fprintf(out, "# openai api key: %s\n", config.MaskSecret(cfg.Classifier.OpenAIKey))
	fmt.Fprintf(out, "# gemini api key: %s\n", config.MaskSecret(cfg.Classifier.GeminiKey))
	return nil
}

func isKeyringItem(item string) bool {
	for _, known := range config.KeyringItems {
		if item == known {
			return true
		}
	}
	return false
}
