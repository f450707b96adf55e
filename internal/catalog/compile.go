package catalog

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/waypoint/internal/model"
)

// CompileTrack parses a CUE value into a Track.
// The track slug is the struct label, e.g. track: "residential-energy": {...}.
//
// ModuleIDs is left empty; New fills it from the compiled modules.
func CompileTrack(v cue.Value) (*model.Track, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	track := &model.Track{Slug: label(v)}

	var err error
	if track.ID, err = requiredString(v, "id"); err != nil {
		return nil, err
	}
	if track.Name, err = requiredString(v, "name"); err != nil {
		return nil, err
	}
	if track.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if track.RequiredTier, err = optionalString(v, "required_tier"); err != nil {
		return nil, err
	}

	return track, nil
}

// CompileModule parses a CUE value into a Module.
// The module ID is the struct label; "track" names the owning track slug.
//
//	module: "res-002": {
//		track:    "residential-energy"
//		title:    "Home Energy Audit Fundamentals"
//		sequence: 2
//		content: {type: "video", duration_seconds: 1200}
//		prerequisites: ["res-001"]
//	}
func CompileModule(v cue.Value) (*model.Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	mod := &model.Module{ID: label(v)}

	var err error
	if mod.TrackSlug, err = requiredString(v, "track"); err != nil {
		return nil, err
	}
	if mod.Title, err = requiredString(v, "title"); err != nil {
		return nil, err
	}
	if mod.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if mod.Sequence, err = requiredInt(v, "sequence"); err != nil {
		return nil, err
	}
	if mod.DurationMinutes, err = optionalInt(v, "duration_minutes"); err != nil {
		return nil, err
	}
	if mod.Prerequisites, err = optionalStrings(v, "prerequisites"); err != nil {
		return nil, err
	}

	contentVal := v.LookupPath(cue.ParsePath("content"))
	if !contentVal.Exists() {
		return nil, &CompileError{
			Field:   "content",
			Message: "content is required",
			Pos:     v.Pos(),
		}
	}
	if mod.Content, err = compileContent(contentVal); err != nil {
		return nil, err
	}

	return mod, nil
}

// compileContent dispatches on content.type.
func compileContent(v cue.Value) (model.Content, error) {
	typ, err := requiredString(v, "type")
	if err != nil {
		return nil, err
	}

	switch model.ContentType(typ) {
	case model.ContentReading:
		minutes, err := optionalInt(v, "estimated_read_minutes")
		if err != nil {
			return nil, err
		}
		return model.Reading{EstimatedReadMinutes: minutes}, nil

	case model.ContentVideo:
		seconds, err := requiredInt(v, "duration_seconds")
		if err != nil {
			return nil, err
		}
		return model.Video{DurationSeconds: seconds}, nil

	case model.ContentQuiz:
		return compileQuiz(v)

	case model.ContentInteractive:
		tool, err := requiredString(v, "tool")
		if err != nil {
			return nil, err
		}
		return model.Interactive{Tool: tool}, nil

	default:
		return nil, &CompileError{
			Field:   "content.type",
			Message: fmt.Sprintf("unknown content type %q (want reading, video, quiz or interactive)", typ),
			Pos:     v.LookupPath(cue.ParsePath("type")).Pos(),
		}
	}
}

func compileQuiz(v cue.Value) (model.Content, error) {
	passing, err := requiredInt(v, "passing_score_percent")
	if err != nil {
		return nil, err
	}
	quiz := model.Quiz{PassingScorePercent: passing}

	questionsVal := v.LookupPath(cue.ParsePath("questions"))
	if !questionsVal.Exists() {
		return nil, &CompileError{
			Field:   "content.questions",
			Message: "quiz questions are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := questionsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		qv := iter.Value()
		var q model.Question
		if q.ID, err = requiredString(qv, "id"); err != nil {
			return nil, err
		}
		if q.Prompt, err = requiredString(qv, "prompt"); err != nil {
			return nil, err
		}
		if q.Options, err = optionalStrings(qv, "options"); err != nil {
			return nil, err
		}
		if q.CorrectAnswer, err = requiredInt(qv, "correct_answer"); err != nil {
			return nil, err
		}
		if q.Explanation, err = optionalString(qv, "explanation"); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

// CompileBadge parses a CUE value into a Badge. The badge slug is the
// struct label.
func CompileBadge(v cue.Value) (*model.Badge, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	badge := &model.Badge{Slug: label(v)}

	var err error
	if badge.ID, err = requiredString(v, "id"); err != nil {
		return nil, err
	}
	if badge.Name, err = requiredString(v, "name"); err != nil {
		return nil, err
	}
	if badge.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if badge.Icon, err = optionalString(v, "icon"); err != nil {
		return nil, err
	}
	if badge.Points, err = optionalInt(v, "points"); err != nil {
		return nil, err
	}

	tierName, err := requiredString(v, "tier")
	if err != nil {
		return nil, err
	}
	if badge.Tier, err = model.ParseTier(tierName); err != nil {
		return nil, &CompileError{
			Field:   "tier",
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath("tier")).Pos(),
		}
	}

	criteriaVal := v.LookupPath(cue.ParsePath("criteria"))
	if !criteriaVal.Exists() {
		return nil, &CompileError{
			Field:   "criteria",
			Message: "criteria is required",
			Pos:     v.Pos(),
		}
	}
	typ, err := requiredString(criteriaVal, "type")
	if err != nil {
		return nil, err
	}
	count, err := optionalInt(criteriaVal, "required_count")
	if err != nil {
		return nil, err
	}
	if badge.Criteria, err = model.NewCriteria(model.CriteriaType(typ), count); err != nil {
		return nil, &CompileError{
			Field:   "criteria.type",
			Message: err.Error(),
			Pos:     criteriaVal.LookupPath(cue.ParsePath("type")).Pos(),
		}
	}

	return badge, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	s := sels[len(sels)-1].String()
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	return s
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// present reports whether field is set. Optional schema fields that were
// never given a value are reported as absent.
func present(v cue.Value, field string) bool {
	fv := v.LookupPath(cue.ParsePath(field))
	return fv.Exists() && fv.IsConcrete()
}

func optionalString(v cue.Value, field string) (string, error) {
	if !present(v, field) {
		return "", nil
	}
	return requiredString(v, field)
}

func requiredInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	if !present(v, field) {
		return 0, nil
	}
	return requiredInt(v, field)
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	if !present(v, field) {
		return nil, nil
	}
	iter, err := v.LookupPath(cue.ParsePath(field)).List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, norm.NFC.String(s))
	}
	return out, nil
}
