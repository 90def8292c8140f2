package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/civicsource/civicsource/internal/assistant"
	"github.com/civicsource/civicsource/internal/backend"
	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/filtering"
	"github.com/civicsource/civicsource/internal/logger"
	"github.com/civicsource/civicsource/internal/portal"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptPostNeed            = "Post a need and find local matches"
	PromptNotifyVendor        = "Notify a matched vendor"
	PromptAppendToExcludeFile = "Exclude a matched vendor from future matches"
	PromptSubmitBid           = "Respond to a notification with a bid"
	PromptRefreshProposals    = "Refresh proposals"
	PromptAskAssistant        = "Ask the assistant"
	PromptBack                = "back"
	PromptExit                = "exit"

	autoQuestion = "How can a small business get certified as an MBE vendor in Memphis?"
)

var errExit = errors.New("exit requested")

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through the government, business, public and compare portals",
	Run: func(cmd *cobra.Command, _ []string) {
		demo(cmd)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Bool("auto", false, "run the scripted walkthrough instead of interactive menus")
	demoCmd.Flags().String("api-url", backend.DefaultAPIURL, "collaborator API base URL")
	demoCmd.Flags().StringP("exclude-file", "e", "", "file with vendors to leave out of matches. Default is unset.")

	viper.BindPFlag("api-url", demoCmd.Flags().Lookup("api-url"))
	viper.BindPFlag("matching.exclude-file", demoCmd.Flags().Lookup("exclude-file"))
}

// demoSession bundles what the portal views share.
type demoSession struct {
	config      *Config
	coordinator *portal.Coordinator
	assistant   *assistant.Session
	logger      *zap.Logger

	lastMatches []civic.ScoredCandidate
}

func demo(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.NewTo(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the civicsource portal", zap.String("version", version), zap.String("api_url", config.APIURL))

	client := backend.New(logger, config.APIURL)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	s := &demoSession{
		config: config,
		coordinator: portal.New(client, portal.Options{
			MinMatchLatency: config.Matching.MinLatency,
			SourceLimit:     config.Matching.SourceLimit,
			Keep:            config.Matching.Keep,
			Filters:         prepareFilters(config.Matching, logger),
		}, logger),
		assistant: assistant.New(client, assistant.Options{
			Cadence:        config.Assistant.Cadence,
			RequestTimeout: config.Assistant.RequestTimeout,
		}, logger),
		logger: logger,
	}

	if auto, _ := cmd.Flags().GetBool("auto"); auto {
		s.walkthrough(ctx)
		return
	}

	if err := s.interactive(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func prepareFilters(cfg MatchingConfig, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewDedupe(),
		filtering.NewExcludedVendors(cfg.ExcludedVendors),
		filtering.NewExcludeFile(cfg.ExcludeFile),
	}

	filters := filtering.New(steps, logger)
	if cfg.DisableDedupe {
		filters.DisableByName("dedupe", "disabled in config")
	}

	for _, status := range filters.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
	return filters
}

// walkthrough drives every portal once: post, match, notify, bid, compare,
// dashboard and one assistant question.
func (s *demoSession) walkthrough(ctx context.Context) {
	c := s.coordinator

	c.Navigate(portal.Government)
	need := walkthroughNeed(time.Now())
	result := c.PostAndFind(ctx, need)
	s.lastMatches = result.Matches
	renderMatches(need, result)

	if len(result.Matches) == 0 {
		s.logger.Info("no matches to notify")
	} else {
		n := c.NotifyVendor(result.Matches[0])
		renderNotifications(c.Notifications())

		top := result.Matches[0]
		price := need.Budget.Mul(decimal.RequireFromString("0.96")).Round(0)
		accepted := c.SubmitBid(ctx, n, portal.Bid{
			BusinessName: top.Name,
			Email:        "bids@" + slug(top.Name) + ".example",
			Price:        price,
			Timeline:     "3 weeks",
			Description:  "Mowing, trimming and bed refresh on a two-week rotation.",
			Experience:   "Maintains 40 acres of city green space.",
		})
		s.logger.Info("bid submitted", zap.Bool("accepted", accepted), zap.String("price", price.String()))
	}

	c.Navigate(portal.Compare)
	renderProposals(c.Proposals(ctx))

	c.Navigate(portal.Public)
	renderDashboard(c.Dashboard())

	s.ask(ctx, autoQuestion)
	c.Navigate(portal.Landing)
}

func (s *demoSession) interactive(ctx context.Context) error {
	for {
		items := make([]string, 0, len(portal.Views())+2)
		for _, view := range portal.Views() {
			items = append(items, view.String())
		}
		items = append(items, PromptAskAssistant, PromptExit)

		viewPrompt := promptui.Select{
			Label: fmt.Sprintf("Current view: %s. Where to?", s.coordinator.Active()),
			Items: items,
		}

		_, selected, err := viewPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExit:
			s.logger.Info("exiting", zap.String("reason", "exit selected"))
			return errExit
		case PromptAskAssistant:
			question, err := (&promptui.Prompt{Label: "Question"}).Run()
			if err != nil {
				return err
			}
			s.ask(ctx, question)
			continue
		}

		view, err := portal.ParseView(selected)
		if err != nil {
			return err
		}
		s.coordinator.Navigate(view)

		if err := s.showView(ctx); err != nil {
			return err
		}
	}
}

// showView renders the active view and runs its actions until the user goes back.
// Actions can switch the view, in which case the new one is shown next.
func (s *demoSession) showView(ctx context.Context) error {
	for {
		view := s.coordinator.Active()

		var err error
		switch view {
		case portal.Landing:
			renderLanding()
			return nil
		case portal.Government:
			err = s.governmentView(ctx)
		case portal.Business:
			err = s.businessView(ctx)
		case portal.Compare:
			err = s.compareView(ctx)
		case portal.Public:
			renderDashboard(s.coordinator.Dashboard())
			return nil
		}

		if errors.Is(err, errBack) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.coordinator.Active() == view {
			return nil
		}
	}
}

var errBack = errors.New("back")

func (s *demoSession) governmentView(ctx context.Context) error {
	for {
		items := []string{PromptPostNeed}
		if len(s.lastMatches) > 0 {
			items = append(items, PromptNotifyVendor)
			if s.config.Matching.ExcludeFile != "" {
				items = append(items, PromptAppendToExcludeFile)
			}
		}

		_, action, err := (&promptui.Select{Label: "Government portal", Items: append(items, PromptBack)}).Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptBack:
			return errBack
		case PromptPostNeed:
			need, err := promptNeed()
			if err != nil {
				return err
			}
			result := s.coordinator.PostAndFind(ctx, need)
			s.lastMatches = result.Matches
			renderMatches(need, result)
		case PromptNotifyVendor:
			candidate, err := s.pickMatch("Notify which vendor?")
			if err != nil {
				return err
			}
			if candidate == nil {
				continue
			}
			n := s.coordinator.NotifyVendor(*candidate)
			s.logger.Info("switched to the business portal", zap.String("notification_id", n.ID))
			return nil
		case PromptAppendToExcludeFile:
			if err := s.excludeVendor(); err != nil {
				return err
			}
		}
	}
}

func (s *demoSession) pickMatch(label string) (*civic.ScoredCandidate, error) {
	items := make([]string, 0, len(s.lastMatches)+1)
	for _, m := range s.lastMatches {
		items = append(items, fmt.Sprintf("%s (%d%% match)", m.Name, m.MatchScore))
	}

	idx, _, err := (&promptui.Select{Label: label, Items: append(items, PromptBack)}).Run()
	if err != nil {
		return nil, err
	}
	if idx >= len(s.lastMatches) {
		return nil, nil
	}
	return &s.lastMatches[idx], nil
}

func (s *demoSession) excludeVendor() error {
	candidate, err := s.pickMatch("Exclude which vendor?")
	if err != nil || candidate == nil {
		return err
	}

	excludeFile := s.config.Matching.ExcludeFile
	excluded, err := filtering.LoadExcludedVendors(excludeFile)
	if err != nil {
		return err
	}

	excluded.Exclude(candidate.Candidate, "excluded from the government portal")
	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.String("vendor", candidate.Name))
	return nil
}

func (s *demoSession) businessView(ctx context.Context) error {
	for {
		notifications := s.coordinator.Notifications()
		renderNotifications(notifications)
		if len(notifications) == 0 {
			return errBack
		}

		_, action, err := (&promptui.Select{Label: "Business portal", Items: []string{PromptSubmitBid, PromptBack}}).Run()
		if err != nil {
			return err
		}
		if action == PromptBack {
			return errBack
		}

		items := make([]string, 0, len(notifications))
		for _, n := range notifications {
			items = append(items, fmt.Sprintf("%s / %s / $%s", n.Title, n.Department, n.Budget.StringFixed(0)))
		}
		idx, _, err := (&promptui.Select{Label: "Bid on which procurement?", Items: items}).Run()
		if err != nil {
			return err
		}

		bid, err := promptBid()
		if err != nil {
			return err
		}

		if s.coordinator.SubmitBid(ctx, notifications[idx], bid) {
			s.logger.Info("bid submitted", zap.String("procurement_id", notifications[idx].ProcurementID))
		} else {
			s.logger.Warn("bid was not accepted, check the api logs and try again")
		}
	}
}

func (s *demoSession) compareView(ctx context.Context) error {
	for {
		renderProposals(s.coordinator.Proposals(ctx))

		_, action, err := (&promptui.Select{Label: "Compare bids", Items: []string{PromptRefreshProposals, PromptBack}}).Run()
		if err != nil {
			return err
		}
		if action == PromptBack {
			return errBack
		}
	}
}

// ask prints the assistant reply as it is revealed.
func (s *demoSession) ask(ctx context.Context, question string) {
	if strings.TrimSpace(question) == "" {
		return
	}

	fmt.Printf("\nyou: %s\nassistant: ", question)
	streamReply(os.Stdout, s.assistant.Ask(ctx, question))
}

// streamReply writes each newly revealed part of the reply as terminal text.
func streamReply(w io.Writer, ex *assistant.Exchange) {
	printed := ""
	for prefix := range ex.Updates() {
		text := assistant.Terminal(prefix)
		if strings.HasPrefix(text, printed) {
			fmt.Fprint(w, text[len(printed):])
			printed = text
		}
	}

	fmt.Fprintln(w)
}

// walkthroughNeed is the posting the scripted walkthrough submits.
func walkthroughNeed(now time.Time) civic.Need {
	return civic.Need{
		Title:       "Overton Park Landscaping",
		Department:  "Memphis Parks Department",
		Category:    "Services",
		Location:    "Memphis, TN",
		Budget:      decimal.NewFromInt(15000),
		Description: "Routine mowing, trimming, and beds refresh across 60 acres.",
		Deadline:    now.AddDate(0, 0, 30).Format(civic.DateLayout),
	}
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}), ""))
}
