package mapping

import (
	"regexp"
	"strings"
)

// RefKind classifies a source configuration value by the kind of reference
// expression it carries.
type RefKind int

// Reference kinds, in decreasing specificity of classification.
const (
	RefLiteral RefKind = iota
	RefProperty
	RefHeader
	RefXPath
	RefUnknown
)

var (
	// ${name} — a property placeholder resolved from process data.
	propertyRef = regexp.MustCompile(`^\$\{([A-Za-z0-9_.-]+)\}$`)
	// #[headers.name] — a transport header reference.
	headerRef = regexp.MustCompile(`^#\[headers\.([A-Za-z0-9_-]+)\]$`)
	// #[...] — some other inline expression we do not understand.
	exprRef = regexp.MustCompile(`^#\[.*\]$`)
	// any embedded reference token inside a larger expression.
	embeddedRef = regexp.MustCompile(`\$\{[A-Za-z0-9_.-]+\}|#\[[^\]]*\]`)
)

// ClassifyRef determines the reference kind of a raw source value.
// Values starting with '/' are treated as XPath expressions into process
// data, the Sterling BPML convention.
func ClassifyRef(v string) RefKind {
	switch {
	case propertyRef.MatchString(v):
		return RefProperty
	case headerRef.MatchString(v):
		return RefHeader
	case strings.HasPrefix(v, "/"):
		return RefXPath
	case exprRef.MatchString(v):
		return RefUnknown
	default:
		return RefLiteral
	}
}

// RewriteValue rewrites a source platform reference expression into the
// target platform's equivalent syntax. The second return value is false
// when the value looked like a reference but its kind was not recognized;
// such values pass through unchanged as literals and the caller records a
// warning.
//
//	${name}            -> {{name}}          (externalized parameter)
//	#[headers.name]    -> ${header.name}    (message header access)
//	/Order/Amount/text() unchanged          (XPath is shared syntax)
//	anything else       unchanged           (literal)
func RewriteValue(v string) (string, bool) {
	switch ClassifyRef(v) {
	case RefProperty:
		name := propertyRef.FindStringSubmatch(v)[1]
		return "{{" + name + "}}", true
	case RefHeader:
		name := headerRef.FindStringSubmatch(v)[1]
		return "${header." + name + "}", true
	case RefXPath, RefLiteral:
		return v, true
	default:
		return v, false
	}
}

// RewriteExpression rewrites every embedded reference inside a guard or
// routing expression, leaving the surrounding comparison syntax alone.
// Whole-value references are handled by RewriteValue; this variant exists
// for expressions like `${amount} > 100`.
func RewriteExpression(expr string) (string, bool) {
	recognized := true

	out := embeddedRef.ReplaceAllStringFunc(expr, func(tok string) string {
		rewritten, ok := RewriteValue(tok)
		if !ok {
			recognized = false
		}
		return rewritten
	})

	return out, recognized
}
