package builtin

import (
	"sort"
	"strings"

	"github.com/styler-dev/styler/pkg/classpath"
	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/position"
	"github.com/styler-dev/styler/pkg/rules"
)

// ImportOrganizationRule sorts import declarations alphabetically and,
// when configured, expands wildcard imports into explicit ones using a
// classpath.Probe to enumerate the package's classes.
type ImportOrganizationRule struct {
	Classpath *classpath.Probe
}

// ID implements rules.Rule.
func (ImportOrganizationRule) ID() string { return "import-organization" }

// Name implements rules.Rule.
func (ImportOrganizationRule) Name() string { return "Import Organization" }

// Description implements rules.Rule.
func (ImportOrganizationRule) Description() string {
	return "sorts imports and optionally expands wildcard imports"
}

// DefaultSeverity implements rules.Rule.
func (ImportOrganizationRule) DefaultSeverity() rules.Severity { return rules.Info }

type importLine struct {
	lineNo   int
	wildcard bool
	pkg      string
	raw      string
}

// Analyze implements rules.Rule.
func (r ImportOrganizationRule) Analyze(ctx *rules.TransformationContext, _ []rules.Config) ([]rules.Violation, error) {
	imports := findImports(ctx.Source)

	var violations []rules.Violation

	if !sort.SliceIsSorted(imports, func(i, j int) bool { return imports[i].raw < imports[j].raw }) {
		violations = append(violations, rules.Violation{
			RuleID:   r.ID(),
			Severity: r.DefaultSeverity(),
			Message:  "imports are not sorted alphabetically",
			FilePath: ctx.FilePath,
			Range:    position.NewRange(position.Position{Line: 1, Column: 1}, position.Position{Line: 1, Column: 1}),
		})
	}

	return violations, nil
}

// Format implements rules.Rule.
func (r ImportOrganizationRule) Format(ctx *rules.TransformationContext, configs []rules.Config) ([]edit.Edit, error) {
	cfg := rules.FindConfig[ImportOrganizationConfig](configs, DefaultImportOrganizationConfig)
	imports := findImports(ctx.Source)

	if len(imports) == 0 {
		return nil, nil
	}

	expanded := r.expandWildcards(imports, cfg)

	sorted := make([]importLine, len(expanded))
	copy(sorted, expanded)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].raw < sorted[j].raw })

	firstLine := imports[0].lineNo
	lastLine := imports[len(imports)-1].lineNo

	var body strings.Builder
	for i, imp := range sorted {
		if i > 0 {
			body.WriteByte('\n')
		}

		body.WriteString(imp.raw)
	}

	return []edit.Edit{{
		Range: position.NewRange(
			position.Position{Line: firstLine, Column: 1},
			position.Position{Line: lastLine + 1, Column: 1},
		),
		Replacement: body.String() + "\n",
		RuleID:      r.ID(),
		Priority:    edit.Normal,
	}}, nil
}

func (r ImportOrganizationRule) expandWildcards(imports []importLine, cfg ImportOrganizationConfig) []importLine {
	if !cfg.ExpandWildcards || r.Classpath == nil {
		return imports
	}

	var expanded []importLine

	for _, imp := range imports {
		if !imp.wildcard {
			expanded = append(expanded, imp)

			continue
		}

		classes := r.Classpath.ListPackageClasses(imp.pkg)
		if len(classes) == 0 {
			expanded = append(expanded, imp)

			continue
		}

		for _, class := range classes {
			expanded = append(expanded, importLine{
				lineNo: imp.lineNo,
				pkg:    imp.pkg,
				raw:    "import " + class + ";",
			})
		}
	}

	return expanded
}

func findImports(source []byte) []importLine {
	var imports []importLine

	lineNo := 1

	for _, line := range splitLinesKeepOffsets(source) {
		trimmed := strings.TrimSpace(line.text)
		if strings.HasPrefix(trimmed, "import ") && strings.HasSuffix(trimmed, ";") {
			body := strings.TrimSuffix(strings.TrimPrefix(trimmed, "import "), ";")
			wildcard := strings.HasSuffix(body, ".*")
			pkg := strings.TrimSuffix(body, ".*")

			imports = append(imports, importLine{lineNo: lineNo, wildcard: wildcard, pkg: pkg, raw: trimmed})
		}

		lineNo++
	}

	return imports
}
