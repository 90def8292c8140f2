package cmd

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/portal"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
)

func renderLanding() {
	fmt.Println(`
CivicSource
  government  post a need and get ranked local vendors
  business    see notifications and respond with bids
  compare     review the bids received for the current procurement
  public      see where the money goes and what it returns locally`)
}

func renderMatches(need civic.Need, result portal.MatchResult) {
	fmt.Printf("\n%s (%s, budget $%s)\n", need.Title, need.Location, need.Budget.StringFixed(0))
	if result.Session != nil {
		fmt.Printf("posted as procurement %s\n", result.Session.ID)
	} else {
		fmt.Println("posting failed, showing matches anyway")
	}

	if len(result.Matches) == 0 {
		fmt.Println("no local matches found")
		return
	}

	for i, m := range result.Matches {
		tags := []string{}
		if !m.IsChain {
			tags = append(tags, "Local")
		}
		if m.GovernmentRegistered {
			tags = append(tags, "MBE/WBE")
		}

		rating := "n/a"
		if m.Rating != nil {
			rating = fmt.Sprintf("%.1f", *m.Rating)
		}

		fmt.Printf("%d. %s  %d%% match  rating %s  %s\n", i+1, m.Name, m.MatchScore, rating, strings.Join(tags, " "))
		if m.Address != "" {
			fmt.Printf("   %s\n", m.Address)
		}
	}
}

func renderNotifications(notifications []civic.Notification) {
	fmt.Printf("\nNotifications (%d)\n", len(notifications))
	if len(notifications) == 0 {
		fmt.Println("nothing yet, a buyer has to notify you from the government portal first")
		return
	}
	for _, n := range notifications {
		fmt.Printf("- %s / %s / %s / $%s / due %s\n", n.Title, n.Department, n.Location, n.Budget.StringFixed(0), n.Deadline)
	}
}

func renderProposals(proposals []civic.Proposal) {
	fmt.Printf("\nProposals (%d)\n", len(proposals))
	if len(proposals) == 0 {
		fmt.Println("no bids received yet")
		return
	}
	for _, p := range proposals {
		fmt.Printf("- %s <%s>  $%s  %s\n", p.BusinessInfo.Name, p.BusinessInfo.Email, p.Price.StringFixed(2), p.Timeline)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
	}
}

func renderDashboard(d portal.Dashboard) {
	fmt.Println("\nPublic dashboard")
	fmt.Printf("awarded to local vendors  $%s\n", d.AwardedTotal.StringFixed(0))
	fmt.Printf("MBE/WBE share             %d%% of a %d%% goal\n", d.MBEShare, d.MBEGoal)
	fmt.Printf("jobs supported            %d\n", d.JobsSupported)
	fmt.Printf("local multiplier          %sx\n", d.LocalMultiplier.String())
	for _, v := range d.Comparison {
		fmt.Printf("%-25s bid $%s, local impact $%s\n", v.Label, v.Bid.StringFixed(0), v.Impact().StringFixed(0))
	}
}

func promptNeed() (civic.Need, error) {
	var need civic.Need

	fields := []struct {
		label    string
		target   *string
		def      string
		validate promptui.ValidateFunc
	}{
		{label: "Title", target: &need.Title, validate: required},
		{label: "Category", target: &need.Category, def: "Services", validate: required},
		{label: "Department", target: &need.Department, def: "Memphis Parks Department"},
		{label: "Location", target: &need.Location, def: "Memphis, TN"},
		{label: "Deadline (YYYY-MM-DD)", target: &need.Deadline, def: time.Now().AddDate(0, 0, 30).Format(civic.DateLayout), validate: date},
		{label: "Description", target: &need.Description},
	}

	for _, f := range fields {
		value, err := (&promptui.Prompt{Label: f.label, Default: f.def, Validate: f.validate}).Run()
		if err != nil {
			return need, err
		}
		*f.target = strings.TrimSpace(value)
	}

	budget, err := promptAmount("Budget", "14500")
	if err != nil {
		return need, err
	}
	need.Budget = budget

	return need, nil
}

func promptBid() (portal.Bid, error) {
	var bid portal.Bid

	fields := []struct {
		label    string
		target   *string
		validate promptui.ValidateFunc
	}{
		{label: "Business name", target: &bid.BusinessName, validate: required},
		{label: "Email", target: &bid.Email, validate: email},
		{label: "Timeline", target: &bid.Timeline},
		{label: "Description", target: &bid.Description},
		{label: "Experience", target: &bid.Experience},
	}

	for _, f := range fields {
		value, err := (&promptui.Prompt{Label: f.label, Validate: f.validate}).Run()
		if err != nil {
			return bid, err
		}
		*f.target = strings.TrimSpace(value)
	}

	price, err := promptAmount("Price", "")
	if err != nil {
		return bid, err
	}
	bid.Price = price

	return bid, nil
}

func promptAmount(label, def string) (decimal.Decimal, error) {
	value, err := (&promptui.Prompt{Label: label, Default: def, Validate: amount}).Run()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.TrimSpace(value))
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func date(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(civic.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func email(s string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return errors.New("invalid email")
	}
	return nil
}

func amount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
