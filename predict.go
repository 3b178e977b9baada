package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/kamilpajak/humanorai/internal/session"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify text as AI-generated or human-written",
	Long: `Classify text with every model of the ensemble and print the verdict.

Without arguments, or with "-", the text is read from stdin.

Examples:
  humanorai predict "This is a scientific abstract about machine learning."
  cat abstract.txt | humanorai predict
  humanorai predict --json - < abstract.txt`,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	sess := session.New(newClient(cfg), session.WithLogger(logger))
	defer sess.Close()

	busy := newBusyIndicator(os.Stderr, "Analiz Ediliyor...")
	states, unsubscribe := sess.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range states {
			if st.Status == session.Submitting {
				busy.Start()
			} else {
				busy.Stop()
			}
		}
	}()

	err = sess.Submit(cmd.Context(), text)
	unsubscribe()
	<-done
	busy.Stop()

	var vErr *session.ValidationError
	if errors.As(err, &vErr) {
		_, _ = color.New(color.FgYellow).Fprintln(os.Stderr, vErr.Message)
		return errShown
	}

	return printSessionState(os.Stdout, os.Stderr, sess.State())
}

// readText joins args, or reads stdin when there are none or the only one is "-".
func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func printSessionState(stdout, stderr io.Writer, st session.State) error {
	switch st.Status {
	case session.Failed:
		_, _ = color.New(color.FgRed).Fprintf(stderr, "Error: %s\n", st.Message)
		return errShown
	case session.Succeeded:
		if jsonOutput {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st.Result)
		}
		printResult(stdout, st.Result)
		return nil
	default:
		return fmt.Errorf("prediction did not complete (%s)", st.Status)
	}
}
