package sanitize

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Scrubber runs the regex battery and, when deep scanning is enabled, the
// gitleaks default rule set on top of it.
type Scrubber struct {
	detector *detect.Detector
}

// Options configures a Scrubber
type Options struct {
	// DeepScan enables the gitleaks pass
	DeepScan bool
}

// NewScrubber builds a Scrubber. A detector that fails to load leaves the
// scrubber on the regex battery only.
func NewScrubber(opts Options) *Scrubber {
	s := &Scrubber{}
	if !opts.DeepScan {
		return s
	}

	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		log.Warn().Err(err).Msg("gitleaks detector unavailable, using built-in rules only")
		return s
	}
	s.detector = detector
	return s
}

// DeepScan reports whether the gitleaks pass is active
func (s *Scrubber) DeepScan() bool {
	return s != nil && s.detector != nil
}

// Scrub redacts text. A nil Scrubber behaves like Sanitize.
func (s *Scrubber) Scrub(text string) string {
	text = Sanitize(text)
	if !s.DeepScan() {
		return text
	}

	findings := s.detector.DetectString(text)
	if len(findings) == 0 {
		return text
	}

	secrets := make([]string, 0, len(findings))
	seen := make(map[string]bool, len(findings))
	for _, f := range findings {
		secret := f.Secret
		if secret == "" || seen[secret] || strings.Contains(Redacted, secret) {
			continue
		}
		seen[secret] = true
		secrets = append(secrets, secret)
	}

	// longest first so a secret containing another is replaced whole
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })
	for _, secret := range secrets {
		text = strings.ReplaceAll(text, secret, Redacted)
	}

	log.Debug().Int("findings", len(findings)).Msg("gitleaks redacted secrets")
	return text
}
