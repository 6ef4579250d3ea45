package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
)

// HeaderTitle is shown once before the pipeline starts.
const HeaderTitle = "Expo Project Generator"

// Header renders the banner.
func Header(plain bool) string {
	if plain {
		return "== " + HeaderTitle + " ==\n"
	}
	return "\n" + headerStyle.Render(HeaderTitle) + "\n"
}

// NextSteps are the instructions printed after a successful run.
func NextSteps(projectPath string) []string {
	return []string{
		"Navigate to your project: `cd " + projectPath + "`",
		"Set APP_VARIANT in .env file (e.g., APP_VARIANT=develop)",
		"Run prebuild: `npm run prebuild`",
		"Start the development server: `npm start`",
		"Build the app: `npm run build` (Android) or `npm run build:ios` (iOS)",
	}
}

// SummaryMarkdown renders the summary as Markdown.
func SummaryMarkdown(s *answers.Summary) string {
	var b strings.Builder
	b.WriteString("# Project Summary\n\n")
	fmt.Fprintf(&b, "- **Project Name:** %s\n", s.ProjectName)
	fmt.Fprintf(&b, "- **Project Path:** %s\n", s.ProjectPath)
	fmt.Fprintf(&b, "- **Project Slug:** %s\n", s.ProjectSlug)
	if len(s.BuildVariants) > 0 {
		fmt.Fprintf(&b, "- **Build Variants:** %s\n", strings.Join(s.BuildVariants, ", "))
	}
	if s.IconCount > 0 {
		fmt.Fprintf(&b, "- **Icons Configured:** %d\n", s.IconCount)
	}

	if len(s.Icons) > 0 {
		b.WriteString("\n## Icons\n\n| Variant | Result |\n|---|---|\n")
		for _, o := range s.Icons {
			result := "icon + adaptive icon"
			switch {
			case o.Skipped:
				result = "skipped: " + o.Reason
			case o.Adaptive == "":
				result = "icon only"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", o.Variant, result)
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	b.WriteString("\n## Next Steps\n\n")
	for i, step := range NextSteps(s.ProjectPath) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// SummaryText renders the summary without any styling.
func SummaryText(s *answers.Summary) string {
	var b strings.Builder
	b.WriteString("All steps completed!\n\n")
	fmt.Fprintf(&b, "  Project Name: %s\n", s.ProjectName)
	fmt.Fprintf(&b, "  Project Path: %s\n", s.ProjectPath)
	fmt.Fprintf(&b, "  Project Slug: %s\n", s.ProjectSlug)
	if len(s.BuildVariants) > 0 {
		fmt.Fprintf(&b, "  Build Variants: %s\n", strings.Join(s.BuildVariants, ", "))
	}
	if s.IconCount > 0 {
		fmt.Fprintf(&b, "  Icons Configured: %d\n", s.IconCount)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "  Warning: %s\n", w)
	}
	b.WriteString("\n  Next Steps:\n")
	for i, step := range NextSteps(s.ProjectPath) {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, strings.ReplaceAll(step, "`", ""))
	}
	return b.String()
}

// RenderSummary renders the summary for the terminal. Styled output goes
// through glamour and falls back to plain text if rendering fails.
func RenderSummary(s *answers.Summary, plain bool) string {
	if plain {
		return SummaryText(s)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return SummaryText(s)
	}
	out, err := r.Render(SummaryMarkdown(s))
	if err != nil {
		return SummaryText(s)
	}
	return "\n" + successStyle.Render(GlyphSucceeded+" All steps completed!") + "\n" + out
}

// RenderFailure renders the closing line of a failed run.
func RenderFailure(step, reason string, plain bool) string {
	msg := "Pipeline failed"
	if step != "" {
		msg = fmt.Sprintf("Pipeline failed at %q", step)
	}
	if plain {
		return msg + ": " + reason + "\n"
	}
	return "\n" + errorStyle.Render(GlyphFailed+" "+msg) + "\n" + dimStyle.Render("  "+reason) + "\n"
}
