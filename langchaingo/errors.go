package langchaingo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/fwojciec/cratedocs"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// newErrorMapper returns a langchaingo error mapper for the provider, extended
// with the messages langchaingo's HTTP clients produce for transport failures.
func newErrorMapper(provider string) *llms.ErrorMapper {
	var m *llms.ErrorMapper
	if provider == string(cratedocs.ProviderOpenAI) {
		m = llms.OpenAIErrorMapper()
	} else {
		m = llms.NewErrorMapper(provider)
	}
	return m.AddMatcher(llms.ErrorMatcher{
		Match: func(err error) bool {
			var netErr net.Error
			if errors.As(err, &netErr) {
				return true
			}
			s := strings.ToLower(err.Error())
			return strings.Contains(s, "network error") ||
				strings.Contains(s, "request timeout") ||
				strings.Contains(s, "connection refused") ||
				strings.Contains(s, "no such host")
		},
		Code: llms.ErrCodeProviderUnavailable,
	})
}

// classify converts a provider failure into an application error whose code
// tells the caller what kind of failure occurred.
func (e *Embedder) classify(err error) error {
	var appErr *cratedocs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, openai.ErrEmptyResponse) ||
		errors.Is(err, openai.ErrUnexpectedResponseLength) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(err.Error(), "empty response") {
		return cratedocs.Errorf(cratedocs.EMALFORMED, "%s returned a malformed response: %v", e.provider, err)
	}

	var llmErr *llms.Error
	if !errors.As(e.mapper.WrapError(err), &llmErr) {
		return fmt.Errorf("%s embedding failed: %w", e.provider, err)
	}

	switch llmErr.Code {
	case llms.ErrCodeAuthentication:
		return cratedocs.Errorf(cratedocs.EUNAUTHORIZED, "%s authentication failed: %s", e.provider, llmErr.Message)
	case llms.ErrCodeRateLimit, llms.ErrCodeQuotaExceeded:
		return cratedocs.Errorf(cratedocs.ERATELIMIT, "%s rate limit or quota exceeded: %s", e.provider, llmErr.Message)
	case llms.ErrCodeTimeout, llms.ErrCodeProviderUnavailable:
		return cratedocs.Errorf(cratedocs.ENETWORK, "%s unreachable: %s", e.provider, llmErr.Message)
	}
	return fmt.Errorf("%s embedding failed: %w", e.provider, err)
}
