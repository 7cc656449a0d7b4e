package rules

import (
	"bytes"
	"fmt"

	"github.com/scop/mdlint/pkg/config"
	"github.com/scop/mdlint/pkg/fix"
	"github.com/scop/mdlint/pkg/lint"
	"github.com/scop/mdlint/pkg/mdast"
)

// styleConsistent is the configuration value for consistent style detection.
const styleConsistent = "consistent"

// HRStyleRule checks for consistent horizontal rule style.
type HRStyleRule struct {
	lint.BaseRule
}

// NewHRStyleRule creates a new hr-style rule.
func NewHRStyleRule() *HRStyleRule {
	return &HRStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD035",
			"hr-style",
			"Horizontal rule style",
			[]string{"hr"},
			true,
		),
	}
}

// Apply checks for consistent horizontal rule style.
//
// This uses the token stream instead of AST node positions: thematic break
// nodes carry no byte range of their own, but the tokenizer emits a
// TokThematicBreak token with accurate byte offsets alongside them.
func (r *HRStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	configStyle := ctx.OptionString("style", styleConsistent)

	var diags []lint.Diagnostic
	var expectedStyle string

	if configStyle != styleConsistent {
		expectedStyle = configStyle
	}

	for _, tok := range ctx.File.Tokens {
		if tok.Kind != mdast.TokThematicBreak {
			continue
		}

		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		line, col := ctx.File.LineAt(tok.StartOffset)
		if line == 0 {
			continue
		}

		// Skip HRs inside code blocks.
		if ctx.IsLineInCodeBlock(line) {
			continue
		}

		hrStyle := string(bytes.TrimSpace(tok.Text(ctx.File.Content)))

		// Set expected style from first HR if consistent mode.
		if expectedStyle == "" {
			expectedStyle = hrStyle
			continue
		}

		// Check for style mismatch.
		if hrStyle != expectedStyle {
			lineInfo := ctx.File.Lines[line-1]

			pos := mdast.SourcePosition{
				StartLine:   line,
				StartColumn: col,
				EndLine:     line,
				EndColumn:   col + len(hrStyle),
			}

			// Build fix.
			builder := fix.NewEditBuilder()
			builder.ReplaceRange(lineInfo.StartOffset, lineInfo.NewlineStart, expectedStyle)

			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
				fmt.Sprintf("Horizontal rule style %q does not match expected %q", hrStyle, expectedStyle)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %q for all horizontal rules", expectedStyle)).
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}
