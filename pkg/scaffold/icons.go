package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/appgen/pkg/imaging"
	"github.com/ormasoftchile/appgen/pkg/kernel/action"
)

// copyIcon validates and copies one variant's icon. Problems with the source
// never fail the step: they veto the variant and report a skipped line.
// The copy is local and settles before the handler returns.
func (h *handlers) copyIcon(_ context.Context, inv *action.Invocation, p action.CopyIcon) (action.Result, error) {
	size := h.cfg.Icons.Size
	sig := &inv.Answers.Signals
	file := filepath.Base(p.Source)

	skip := func(reason, line string) (action.Result, error) {
		sig.MarkIconFailed(p.Variant, reason)
		inv.Report.Skipped(line)
		return action.Immediate("skipped"), nil
	}

	if p.Source == "" {
		return skip("no icon selected", fmt.Sprintf("%s No icon selected (skipped)", variantTag(p.Variant)))
	}

	dims, err := imaging.ValidateDimensions(p.Source, size, size)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return skip("source file not found", "Source file not found: "+p.Source)
	case err != nil:
		return skip("unreadable image", fmt.Sprintf("Could not read icon %s: %v (skipped)", file, err))
	case !dims.Matches:
		return skip(fmt.Sprintf("dimensions %s", dims),
			fmt.Sprintf("Icon must be %dx%d pixels: %s (skipped)", size, size, file))
	}

	if err := copyFile(p.Source, p.Dest); err != nil {
		return skip("copy failed", "Could not copy file: "+err.Error())
	}
	if !sig.MarkIconCopied(p.Variant, p.Dest) {
		return skip(sig.FailureReason(p.Variant), fmt.Sprintf("%s Icon vetoed earlier (skipped)", variantTag(p.Variant)))
	}
	inv.Report.Detail(fmt.Sprintf("%s Copied icon %s (%dx%d)", variantTag(p.Variant), file, size, size))
	return action.Immediate("copied " + p.Dest), nil
}

// adaptiveIcon honors the variant's veto before touching the filesystem.
func (h *handlers) adaptiveIcon(_ context.Context, inv *action.Invocation, p action.AdaptiveIcon) (action.Result, error) {
	sig := &inv.Answers.Signals
	if sig.IconFailed(p.Variant) {
		inv.Report.Skipped(fmt.Sprintf("Skipped adaptive icon generation (icon copy failed for %s)", p.Variant))
		return action.Immediate("skipped"), nil
	}

	src := p.Source
	if copied, ok := sig.CopiedIcon(p.Variant); ok {
		src = copied
	}
	if _, err := os.Stat(src); err != nil {
		sig.MarkIconFailed(p.Variant, "source icon not found")
		inv.Report.Skipped("Skipped adaptive icon (source icon not found - copy may have failed)")
		return action.Immediate("skipped"), nil
	}

	if err := imaging.GenerateAdaptive(src, p.Dest, h.cfg.Icons.Size, h.cfg.Icons.AdaptiveInset); err != nil {
		warn(inv, "Could not generate adaptive icon for %s: %v", p.Variant, err)
		return action.Immediate("adaptive icon failed"), nil
	}
	sig.MarkAdaptiveGenerated(p.Variant, p.Dest)
	inv.Report.Detail(variantTag(p.Variant) + " Generated adaptive icon")
	return action.Immediate("generated " + p.Dest), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
