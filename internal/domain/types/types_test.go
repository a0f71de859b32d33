package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/mergington/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestActivity(t *testing.T) {
	Convey("Given an Activity view", t, func() {
		a := types.Activity{
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 2,
			Participants:    []string{"michael@mergington.edu"},
		}

		Convey("When serialized", func() {
			raw, err := json.Marshal(a)
			So(err, ShouldBeNil)

			Convey("Then it should use the public field names", func() {
				var m map[string]any
				So(json.Unmarshal(raw, &m), ShouldBeNil)
				So(m, ShouldContainKey, "description")
				So(m, ShouldContainKey, "schedule")
				So(m["max_participants"], ShouldEqual, float64(2))
				So(m["participants"], ShouldResemble, []any{"michael@mergington.edu"})
			})
		})

		Convey("When computing spots left", func() {
			So(a.SpotsLeft(), ShouldEqual, 1)

			a.Participants = append(a.Participants, "daniel@mergington.edu", "emma@mergington.edu")
			Convey("Then an over-full roster should report zero", func() {
				So(a.SpotsLeft(), ShouldEqual, 0)
			})
		})
	})
}
