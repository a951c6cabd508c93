package workforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/optspec/internal/args"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/spec"
)

// assignParts splits an assignment variable name back into its
// candidate/day/skill coordinates.
func assignParts(name string) (candidate, day, skill string, ok bool) {
	body, found := strings.CutPrefix(name, "assign[")
	if !found || !strings.HasSuffix(body, "]") {
		return "", "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(body, "]"), ",")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func matches(value, filter string) bool {
	return filter == "" || value == filter
}

// ForbidAssignment pins matching assignment variables to zero. The
// candidate argument is required; day and skill narrow the match and
// default to every value.
func ForbidAssignment(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	candidate, err := args.String(a, "candidate")
	if err != nil {
		return err
	}
	day, err := args.OptionalString(a, "day", "")
	if err != nil {
		return err
	}
	skill, err := args.OptionalString(a, "skill", "")
	if err != nil {
		return err
	}

	forbidden := 0
	for _, name := range h.VarNames() {
		c, d, sk, ok := assignParts(name)
		if !ok || c != candidate || !matches(d, day) || !matches(sk, skill) {
			continue
		}
		err := h.AddConstraint(&model.Constraint{
			Label:    fmt.Sprintf("forbid[%s]", name),
			Terms:    []model.Term{{Coef: 1, Var: name}},
			Relation: model.LessEqual,
			RHS:      0,
		})
		if err != nil {
			return err
		}
		forbidden++
	}
	ctxlog.FromContext(ctx).Debug("Forbade assignments.", "candidate", candidate, "count", forbidden)
	return nil
}

// AllowAssignment removes previously installed forbid constraints matching
// the same candidate/day/skill filter. Applied after ForbidAssignment it
// re-permits the matched subset; order in the override list is what makes
// that meaningful.
func AllowAssignment(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	candidate, err := args.String(a, "candidate")
	if err != nil {
		return err
	}
	day, err := args.OptionalString(a, "day", "")
	if err != nil {
		return err
	}
	skill, err := args.OptionalString(a, "skill", "")
	if err != nil {
		return err
	}

	removed := h.RemoveConstraints(func(c *model.Constraint) bool {
		body, found := strings.CutPrefix(c.Label, "forbid[")
		if !found || !strings.HasSuffix(body, "]") {
			return false
		}
		vc, vd, vs, ok := assignParts(strings.TrimSuffix(body, "]"))
		return ok && vc == candidate && matches(vd, day) && matches(vs, skill)
	})
	ctxlog.FromContext(ctx).Debug("Re-permitted assignments.", "candidate", candidate, "count", removed)
	return nil
}

// MaxDailyAssignments caps how many skills one candidate may be assigned
// on a single day. The cap comes from the limit argument, falling back to
// the max_daily_assignments option.
func MaxDailyAssignments(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	limit, err := dailyLimit(s, a)
	if err != nil {
		return err
	}

	groups := make(map[[2]string][]model.Term)
	for _, name := range h.VarNames() {
		c, d, _, ok := assignParts(name)
		if !ok {
			continue
		}
		key := [2]string{c, d}
		groups[key] = append(groups[key], model.Term{Coef: 1, Var: name})
	}

	for key, terms := range groups {
		err := h.AddConstraint(&model.Constraint{
			Label:    fmt.Sprintf("max_daily[%s,%s]", key[0], key[1]),
			Terms:    terms,
			Relation: model.LessEqual,
			RHS:      limit,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func dailyLimit(s *spec.Specification, a map[string]any) (float64, error) {
	if _, ok := a["limit"]; ok {
		return args.Float(a, "limit")
	}
	if raw, ok := s.Option("max_daily_assignments"); ok {
		limit, ok := args.AsFloat(raw)
		if !ok {
			return 0, &args.Error{Key: "limit", Detail: fmt.Sprintf("option max_daily_assignments is not a number (%T)", raw)}
		}
		return limit, nil
	}
	return 0, &args.Error{Key: "limit", Detail: "required argument is missing and no max_daily_assignments option is set"}
}

// clockLayout is the textual form of the start and end arguments.
const clockLayout = "15:04"

// TimeWindow forbids assignments whose day member falls outside the
// [start, end) clock window. Day index members are pure calendar dates and
// therefore always carry a 00:00 time of day, so the window can only ever
// discriminate on whether it contains midnight; this mirrors the
// originating template's behavior and is kept as is rather than guessed
// into something else.
func TimeWindow(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	startStr, err := args.String(a, "start")
	if err != nil {
		return err
	}
	endStr, err := args.String(a, "end")
	if err != nil {
		return err
	}
	start, err := time.Parse(clockLayout, startStr)
	if err != nil {
		return &args.Error{Key: "start", Detail: fmt.Sprintf("expected HH:MM, got %q", startStr)}
	}
	end, err := time.Parse(clockLayout, endStr)
	if err != nil {
		return &args.Error{Key: "end", Detail: fmt.Sprintf("expected HH:MM, got %q", endStr)}
	}

	forbidden := 0
	for _, name := range h.VarNames() {
		_, d, _, ok := assignParts(name)
		if !ok {
			continue
		}
		member, err := time.Parse(spec.DateLayout, d)
		if err != nil {
			// List-valued day indexes carry arbitrary member strings with
			// no clock component to test; leave those assignments alone.
			continue
		}
		clock := member.Format(clockLayout)
		if clock >= startStr && clock < endStr && !end.Before(start) {
			continue
		}
		err = h.AddConstraint(&model.Constraint{
			Label:    fmt.Sprintf("time_window[%s]", name),
			Terms:    []model.Term{{Coef: 1, Var: name}},
			Relation: model.LessEqual,
			RHS:      0,
		})
		if err != nil {
			return err
		}
		forbidden++
	}
	if forbidden > 0 {
		ctxlog.FromContext(ctx).Warn("Time window excluded assignments; day members have no time of day.",
			"start", startStr, "end", endStr, "forbidden", forbidden)
	}
	return nil
}
