package report

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/starxnet/mining-credits-cli/internal/application"
)

type RenderOptions struct {
	Now time.Time
}

func renderRunView(rep application.Report, s styles) string {
	header := "mining accrual run"
	if rep.DryRun {
		header += " (dry run)"
	}

	lines := []string{
		s.title.Render(header),
		s.header.Render(fmt.Sprintf("ran at %s · accounts evaluated: %d", rep.RanAt.UTC().Format(time.RFC3339), rep.AccountsEvaluated)),
	}

	if len(rep.Results) == 0 {
		lines = append(lines, s.empty.Render("No accounts required changes."))
	}

	for _, result := range rep.Results {
		lines = append(lines, resultLine(result, s))
	}

	lines = append(lines, s.section.Render(summaryBlock(rep, s)))

	if len(rep.Failures) > 0 {
		lines = append(lines, s.section.Render(failureBlock(rep, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func resultLine(result application.AccountResult, s styles) string {
	id := s.account.Render(string(result.ID))

	if result.Slashed > 0 {
		amount := s.slash.Render(fmt.Sprintf("-%.5f coins", result.Slashed))
		meta := s.meta.Render(fmt.Sprintf("(%dh inactive)", result.SlashedHours))
		return lipgloss.JoinHorizontal(lipgloss.Top, id, "  ", amount, " ", meta)
	}

	amount := s.credit.Render(fmt.Sprintf("+%.5f coins", result.Credited))
	meta := s.meta.Render(fmt.Sprintf("(%d min @ %.4f/h, boost %.4f)", result.Minutes, result.RatePerHour, result.SpeedBoost+result.BoostRate))
	state := s.openTag.Render("mining continues")
	if result.SessionClosed {
		state = s.closed.Render("mining ended")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, id, "  ", amount, " ", meta, " ", state)
}

func summaryBlock(rep application.Report, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.summary.Render("summary"),
		s.detail.Render(fmt.Sprintf("sessions ended: %d", rep.SessionsClosed)),
		s.detail.Render(fmt.Sprintf("still mining: %d", rep.SessionsStillOpen)),
		s.detail.Render(fmt.Sprintf("total credited: %.5f coins", rep.TotalCredited)),
		s.detail.Render(fmt.Sprintf("accounts slashed: %d", rep.AccountsSlashed)),
		s.detail.Render(fmt.Sprintf("total slashed: %.5f coins", rep.TotalSlashed)),
	)
}

func failureBlock(rep application.Report, s styles) string {
	lines := []string{s.warning.Render(fmt.Sprintf("write failures: %d", len(rep.Failures)))}
	for _, failure := range rep.Failures {
		lines = append(lines, s.failures.Render(fmt.Sprintf("%s: %s", failure.ID, failure.Err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStatusView(statuses []application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("mining accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(statuses))),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(statusBlock(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusBlock(status application.Status, opts RenderOptions, s styles) string {
	account := status.Account
	title := string(account.ID)
	if account.Name != "" {
		title = fmt.Sprintf("%s (%s)", account.Name, account.ID)
	}

	parts := []string{
		s.account.Render(title),
		s.detail.Render(fmt.Sprintf("balance: %.5f coins", account.Balance)),
	}

	if account.ReferralCode != "" {
		parts = append(parts, s.meta.Render(fmt.Sprintf("referral code: %s", account.ReferralCode)))
	}
	if account.BoostRate > 0 {
		parts = append(parts, s.meta.Render(fmt.Sprintf("boost rate: %.4f/h", account.BoostRate)))
	}

	parts = append(parts, sessionLine(status, opts, s))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sessionLine(status application.Status, opts RenderOptions, s styles) string {
	if status.Account.Mining == nil {
		return s.idleTag.Render("no mining session")
	}
	if !status.Open {
		return s.idleTag.Render("session closed")
	}

	if !opts.Now.IsZero() && status.SessionEnd.After(opts.Now) {
		remaining := status.SessionEnd.Sub(opts.Now).Round(time.Minute)
		return s.openTag.Render(fmt.Sprintf("mining · ends in %s", remaining))
	}

	return s.openTag.Render(fmt.Sprintf("mining · ends at %s", status.SessionEnd.UTC().Format(time.RFC3339)))
}
