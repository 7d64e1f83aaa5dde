package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/domain"
	"docqa/internal/tui"
)

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		a       *app
	)
	root := &cobra.Command{
		Use:          "docqa",
		Short:        "Answer questions and summarize a bundled document collection",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd.Context(), cfgPath)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a == nil {
				return nil
			}
			return a.close()
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/docqa/config.yaml)")

	current := func() *app { return a }
	root.AddCommand(
		newAskCmd(current),
		newSummarizeCmd(current),
		newDigestCmd(current),
		newListCmd(current),
		newTUICmd(current),
	)
	return root
}

func newAskCmd(current func() *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the most relevant document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			res := current().pipeline.Answer(cmd.Context(), q)
			return emit(cmd.OutOrStdout(), out, "Answer: "+q, res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the result to this file")
	return cmd
}

func newSummarizeCmd(current func() *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summarize <topic or instruction>",
		Short: "Summarize the document most relevant to a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := strings.Join(args, " ")
			res := current().pipeline.Summarize(cmd.Context(), p)
			return emit(cmd.OutOrStdout(), out, "Summary: "+p, res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the result to this file")
	return cmd
}

func newDigestCmd(current func() *app) *cobra.Command {
	var (
		out        string
		extractive int
	)
	cmd := &cobra.Command{
		Use:   "digest <document>",
		Short: "Summarize a whole document section by section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := current().pipeline
			var res domain.Result
			if extractive > 0 {
				res = p.OutlineDocument(cmd.Context(), args[0], extractive)
			} else {
				res = p.SummarizeDocument(cmd.Context(), args[0])
			}
			return emit(cmd.OutOrStdout(), out, "Digest: "+args[0], res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the result to this file")
	cmd.Flags().IntVar(&extractive, "extractive", 0, "Pick this many key sentences locally instead of calling the generator")
	return cmd
}

func newListCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the documents of the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			ids := a.pipeline.Documents(cmd.Context())
			if len(ids) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No documents found in %s\n", a.cfg.Corpus.Dir)
				return err
			}
			for _, id := range ids {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newTUICmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			ids := a.pipeline.Documents(cmd.Context())
			header := fmt.Sprintf("%d documents in %s", len(ids), a.cfg.Corpus.Dir)
			m := tui.New(cmd.Context(), a.pipeline, header)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// emit prints res and, when path is set, writes a title/body text file
// for report rendering.
func emit(w io.Writer, path, title string, res domain.Result) error {
	if _, err := fmt.Fprintln(w, res.Text); err != nil {
		return err
	}
	if res.Status == domain.StatusOK && res.DocumentID != "" {
		source := "\nsource: " + res.DocumentID
		if res.Score > 0 {
			source += fmt.Sprintf(" (score %.3f)", res.Score)
		}
		if _, err := fmt.Fprintln(w, source); err != nil {
			return err
		}
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(title+"\n\n"+res.Text+"\n"), 0o644)
}
