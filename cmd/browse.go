package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/logger"
	"github.com/spigell/match-responder/internal/matching"
	"github.com/spigell/match-responder/internal/render"
)

const (
	PromptNext     = "Next page"
	PromptPrevious = "Previous page"
	PromptRun      = "Run matching"
	PromptRefresh  = "Refresh with lower requirements"
	PromptPageSize = "Change page size"
	PromptExplain  = "Explain a match"
	PromptReload   = "Reload"
	PromptQuit     = "Quit"
	PromptBack     = "back"
)

var errExit = errors.New("exit requested")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and refine matches interactively",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s := newSession(ctx)
		// text only, json and yaml make no sense between prompts
		s.format = render.FormatText

		// leaving the view drops whatever is still in flight
		defer s.controller.Discard()

		if _, err := s.controller.LoadPage(ctx, matching.DefaultPage); err != nil {
			s.report(err)
		}
		s.print()

		for {
			prompt := promptui.Select{
				Label: "What next?",
				Items: s.actions(),
				Size:  10,
			}

			_, action, err := prompt.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return
				}
				s.logger.Fatal("exiting", zap.Error(err))
			}

			if err := s.handleAction(ctx, action); err != nil {
				if errors.Is(err, errExit) {
					return
				}
				s.report(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// actions lists only what the current state allows.
func (s *session) actions() []string {
	snap := s.controller.Snapshot()

	items := make([]string, 0, 8)
	if snap.Page.HasNext {
		items = append(items, PromptNext)
	}
	if snap.Page.HasPrevious {
		items = append(items, PromptPrevious)
	}

	items = append(items, PromptRun)
	if snap.Page.TotalMatches > 0 {
		items = append(items, PromptRefresh)
	}
	items = append(items, PromptPageSize)
	if s.explainer != nil && snap.Page.Len() > 0 {
		items = append(items, PromptExplain)
	}

	return append(items, PromptReload, PromptQuit)
}

func (s *session) handleAction(ctx context.Context, action string) error {
	var err error

	switch action {
	case PromptNext:
		_, err = s.controller.NextPage(ctx)
	case PromptPrevious:
		_, err = s.controller.PreviousPage(ctx)
	case PromptRun:
		_, err = s.controller.RunMatching(ctx)
	case PromptRefresh:
		_, err = s.controller.Refresh(ctx)
	case PromptReload:
		_, err = s.controller.LoadPage(ctx, s.controller.Snapshot().Query.Page)
	case PromptPageSize:
		var changed bool
		changed, err = s.choosePageSize(ctx)
		if err == nil && !changed {
			return nil
		}
	case PromptExplain:
		return s.explain(ctx)
	case PromptQuit:
		s.logger.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	if err != nil {
		return err
	}

	s.print()
	return nil
}

func (s *session) choosePageSize(ctx context.Context) (bool, error) {
	current := s.controller.Snapshot().Query.PageSize

	items := make([]string, 0, len(matching.AllowedPageSizes)+1)
	cursor := 0
	for i, size := range matching.AllowedPageSizes {
		if size == current {
			cursor = i
		}
		items = append(items, strconv.Itoa(size))
	}

	prompt := promptui.Select{
		Label:     "Results per page",
		Items:     append(items, PromptBack),
		CursorPos: cursor,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return false, err
	}
	if selected == PromptBack {
		return false, nil
	}

	size, err := strconv.Atoi(selected)
	if err != nil {
		return false, fmt.Errorf("invalid page size %q: %w", selected, err)
	}

	_, err = s.controller.ChangePageSize(ctx, size)
	return err == nil, err
}

func (s *session) explain(ctx context.Context) error {
	page := s.controller.Snapshot().Page

	items := make([]string, 0, page.Len()+1)
	for _, r := range page.Results {
		items = append(items, fmt.Sprintf("%s %s (%d%%)", r.ID, render.Title(r), r.MatchScore))
	}

	prompt := promptui.Select{
		Label: "Choose a match and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	id := strings.Split(selected, " ")[0]
	match := page.FindByID(id)
	if match == nil {
		return fmt.Errorf("there is no such match id %s", id)
	}

	if match.Summary != "" {
		fmt.Fprintf(stdout, "\n%s\n%s\n\n", render.Title(*match), match.Summary)
		return nil
	}

	explanation, err := s.explainer.Explain(ctx, match)
	if err != nil {
		return fmt.Errorf("explain match %s: %w", id, err)
	}

	fmt.Fprintf(stdout, "\n%s\n%s\n", render.Title(*match), explanation.Summary)
	if explanation.Advice != "" {
		fmt.Fprintf(stdout, "Next step: %s\n", explanation.Advice)
	}
	fmt.Fprintln(stdout)

	s.logger.Debug("explained match", zap.String(logger.FieldMatchID, id))
	return nil
}

// report shows a failed operation and keeps the loop going. The held page is unchanged.
func (s *session) report(err error) {
	if matching.IsRejection(err) {
		s.logger.Info("action not available", zap.Error(err))
		return
	}

	s.logger.Error("operation failed", zap.Error(err))
	fmt.Fprintf(stdout, "\nError: %s\n\n", err)
}
