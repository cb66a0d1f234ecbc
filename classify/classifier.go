// Package classify maps raw errors to a recovery classification.
//
// Classification is total: every (error, context) pair yields exactly one
// Classification, falling back to {unknown, medium, retry, retryable} rather
// than failing. Structured error kinds tagged at the throw site
// (contracts.FaultError) are trusted first; substring heuristics over the
// error text apply only to errors from uncontrolled sources.
package classify

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/faultgate/faultgate-go/contracts"
)

// classTable is the fixed kind -> classification mapping. The strategy and
// retryable columns drive the boundary's dispatch, so changes here change
// recovery behavior everywhere.
var classTable = map[contracts.ErrorType]contracts.Classification{
	contracts.ErrorTypeNetwork: {
		Type:      contracts.ErrorTypeNetwork,
		Severity:  contracts.SeverityMedium,
		Strategy:  contracts.StrategyRetry,
		Retryable: true,
	},
	contracts.ErrorTypeTimeout: {
		Type:      contracts.ErrorTypeTimeout,
		Severity:  contracts.SeverityMedium,
		Strategy:  contracts.StrategyRetry,
		Retryable: true,
	},
	contracts.ErrorTypeValidation: {
		Type:      contracts.ErrorTypeValidation,
		Severity:  contracts.SeverityHigh,
		Strategy:  contracts.StrategyFallback,
		Retryable: false,
	},
	contracts.ErrorTypePermission: {
		Type:      contracts.ErrorTypePermission,
		Severity:  contracts.SeverityHigh,
		Strategy:  contracts.StrategyDegrade,
		Retryable: false,
	},
	contracts.ErrorTypeData: {
		Type:      contracts.ErrorTypeData,
		Severity:  contracts.SeverityMedium,
		Strategy:  contracts.StrategyFallback,
		Retryable: true,
	},
	contracts.ErrorTypeRuntime: {
		Type:      contracts.ErrorTypeRuntime,
		Severity:  contracts.SeverityCritical,
		Strategy:  contracts.StrategyFail,
		Retryable: false,
	},
	contracts.ErrorTypeUnknown: {
		Type:      contracts.ErrorTypeUnknown,
		Severity:  contracts.SeverityMedium,
		Strategy:  contracts.StrategyRetry,
		Retryable: true,
	},
}

// keywordRule matches a category by substrings of the lower-cased error text
type keywordRule struct {
	kind     contracts.ErrorType
	keywords []string
}

// keywordRules are evaluated in order; the first match wins. Timeout must
// precede the generic network rule and validation must precede the generic
// data rule.
var keywordRules = []keywordRule{
	{contracts.ErrorTypeTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{contracts.ErrorTypeNetwork, []string{"network", "fetch", "connection", "unreachable", "refused", "socket", "dns"}},
	{contracts.ErrorTypeValidation, []string{"validation", "invalid", "required", "schema"}},
	{contracts.ErrorTypePermission, []string{"permission", "denied", "unauthorized", "forbidden"}},
	{contracts.ErrorTypeData, []string{"data", "parse", "json", "geojson", "decode", "malformed", "unexpected token"}},
	{contracts.ErrorTypeRuntime, []string{"panic", "runtime", "nil pointer", "index out of range", "undefined", "null"}},
}

// Classify maps an error to its recovery classification. It is pure,
// synchronous and never panics; a nil error classifies as unknown.
func Classify(err error, ectx contracts.ErrorContext) contracts.Classification {
	if err == nil {
		return classTable[contracts.ErrorTypeUnknown]
	}

	// Structured kinds tagged at the throw site win over any heuristic
	var fe *contracts.FaultError
	if errors.As(err, &fe) {
		class := classTable[fe.Kind]
		class.Retryable = fe.IsRetryable()
		return class
	}

	// Well-known stdlib shapes before message sniffing
	if errors.Is(err, context.DeadlineExceeded) {
		return classTable[contracts.ErrorTypeTimeout]
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return classTable[contracts.ErrorTypeTimeout]
		}
		return classTable[contracts.ErrorTypeNetwork]
	}

	text := strings.ToLower(err.Error())
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return classTable[rule.kind]
			}
		}
	}

	return classTable[contracts.ErrorTypeUnknown]
}

// ClassificationFor returns the fixed classification for a known error kind
func ClassificationFor(kind contracts.ErrorType) contracts.Classification {
	if class, ok := classTable[kind]; ok {
		return class
	}
	return classTable[contracts.ErrorTypeUnknown]
}
