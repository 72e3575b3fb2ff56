package convert

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/Comcast/rulebind/types"

	"github.com/gorhill/cronexpr"
)

// Schedule is the kind of a parsed cron expression.
//
// See https://github.com/gorhill/cronexpr for the syntax.
var Schedule = types.NewKind("Schedule", reflect.TypeOf(&cronexpr.Expression{}))

// Now is used when converting a Schedule to a Time.
var Now = time.Now

func init() {
	types.DefaultRegistry.Register(Schedule)
}

// ParseSchedule parses a cron expression.
func ParseSchedule(s string) (*cronexpr.Expression, error) {
	return cronexpr.Parse(strings.TrimSpace(s))
}

// RegisterSchedules adds conversions from String to Schedule and from
// Schedule to Time (the schedule's next time after Now).
func RegisterSchedules(s *Service) {
	s.Register(types.String, Schedule, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return ParseSchedule(v.(string))
	})
	s.Register(Schedule, types.Time, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return v.(*cronexpr.Expression).Next(Now()), nil
	})
}
