package classify

import (
	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/job"
)

// ValidateBatch re-checks every classified posting for flag conflicts.
// A posting marked both graduate and internship is auto-corrected in favour
// of graduate and logged as a warning. A posting whose flags contradict its
// title (title says internship, flags say graduate, or vice versa) is
// ambiguous: logged but never auto-corrected. Returns the number of
// corrections applied.
func ValidateBatch(jobs []*job.Job, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	corrected := 0
	for _, j := range jobs {
		if j.IsGraduate && j.IsInternship {
			j.IsInternship = false
			corrected++
			logger.Warn("correcting conflicting classification flags",
				zap.String("job_hash", j.Hash),
				zap.String("title", j.Title),
				zap.String("resolution", "graduate takes precedence"),
			)
			continue
		}

		title := j.Title
		titleGraduate := matchesAny(graduatePatterns, title)
		titleInternship := matchesAny(internshipPatterns, title)

		switch {
		case j.IsInternship && titleGraduate && !titleInternship:
			// Title signals graduate but the flags landed on internship.
			j.IsInternship = false
			j.IsGraduate = true
			corrected++
			logger.Warn("correcting internship flag contradicted by title",
				zap.String("job_hash", j.Hash),
				zap.String("title", j.Title),
			)
		case j.IsGraduate && titleInternship && !titleGraduate:
			logger.Warn("ambiguous classification left uncorrected",
				zap.String("job_hash", j.Hash),
				zap.String("title", j.Title),
				zap.String("flags", "graduate"),
				zap.String("title_signal", "internship"),
			)
		}
	}

	return corrected
}
