package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mergington/internal/adapters/repository"
	service "github.com/okian/mergington/internal/app"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/seed"
	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func smallSeed() seed.Dataset {
	return seed.Dataset{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 2,
			Participants:    []string{"michael@mergington.edu"},
		},
		"Baseball Team": {
			Description:     "Practice and compete in baseball games",
			Schedule:        "Mondays, 4:00 PM - 6:00 PM",
			MaxParticipants: 18,
			Participants:    []string{},
		},
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a service with default options", t, func() {
		svc := service.New()

		Convey("Then the registry is loaded from the embedded seed", func() {
			activities := svc.ListActivities(context.Background())
			So(activities, ShouldContainKey, "Baseball Team")
			So(activities, ShouldContainKey, "Music Ensemble")
			So(activities["Music Ensemble"].Participants, ShouldContain, "lucas@mergington.edu")
		})

		Convey("Then it is not started", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service with custom options", t, func() {
		svc := service.New(
			service.WithSeed(smallSeed()),
			service.WithWorkerCount(3),
			service.WithQueueSize(16),
			service.WithJournalSize(5),
			service.WithLogger(logger.Get()),
		)

		Convey("Then stats reflect the configuration", func() {
			stats := svc.GetStats()
			So(stats["activities"], ShouldEqual, 2)
			So(stats["participants"], ShouldEqual, 1)
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["queueSize"], ShouldEqual, 16)
		})
	})
}

func TestService_ListActivities(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc := service.New(service.WithSeed(smallSeed()))
		ctx := context.Background()

		Convey("When listing activities", func() {
			activities := svc.ListActivities(ctx)

			Convey("Then every activity is present with an array roster", func() {
				So(len(activities), ShouldEqual, 2)
				So(activities["Baseball Team"].Participants, ShouldNotBeNil)
				So(activities["Baseball Team"].Participants, ShouldBeEmpty)
				So(activities["Chess Club"].MaxParticipants, ShouldEqual, 2)
			})

			Convey("Then mutating the result does not touch the registry", func() {
				a := activities["Chess Club"]
				a.Participants[0] = "mallory@mergington.edu"
				again := svc.ListActivities(ctx)
				So(again["Chess Club"].Participants, ShouldResemble, []string{"michael@mergington.edu"})
			})
		})
	})
}

func TestService_Signup(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc := service.New(service.WithSeed(smallSeed()))
		ctx := context.Background()

		Convey("When signing up a new student", func() {
			msg, err := svc.Signup(ctx, "Chess Club", "emma@mergington.edu")

			Convey("Then the confirmation names the student and activity", func() {
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, "Signed up emma@mergington.edu for Chess Club")
				So(svc.ListActivities(ctx)["Chess Club"].Participants, ShouldResemble,
					[]string{"michael@mergington.edu", "emma@mergington.edu"})
			})

			Convey("Then signing up again is rejected without a duplicate", func() {
				_, err := svc.Signup(ctx, "Chess Club", "emma@mergington.edu")
				So(errors.Is(err, repository.ErrAlreadySignedUp), ShouldBeTrue)
				So(len(svc.ListActivities(ctx)["Chess Club"].Participants), ShouldEqual, 2)
			})

			Convey("Then the change is journaled", func() {
				changes := svc.RecentChanges(5)
				So(len(changes), ShouldEqual, 1)
				So(changes[0].Kind, ShouldEqual, model.ChangeSignup)
				So(changes[0].Enrolled, ShouldEqual, 2)
			})
		})

		Convey("When signing up for an unknown activity", func() {
			before := svc.ListActivities(ctx)
			_, err := svc.Signup(ctx, "Underwater Basket Weaving", "emma@mergington.edu")

			Convey("Then it fails with not found and nothing changes", func() {
				So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
				So(svc.ListActivities(ctx), ShouldResemble, before)
			})
		})

		Convey("When the activity is over capacity", func() {
			_, err1 := svc.Signup(ctx, "Chess Club", "a@mergington.edu")
			_, err2 := svc.Signup(ctx, "Chess Club", "b@mergington.edu")

			Convey("Then capacity is informational by default", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(len(svc.ListActivities(ctx)["Chess Club"].Participants), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a service enforcing capacity", t, func() {
		svc := service.New(service.WithSeed(smallSeed()), service.WithCapacityEnforcement(true))
		ctx := context.Background()

		Convey("When the roster fills up", func() {
			_, err1 := svc.Signup(ctx, "Chess Club", "a@mergington.edu")
			_, err2 := svc.Signup(ctx, "Chess Club", "b@mergington.edu")

			Convey("Then the extra signup is rejected", func() {
				So(err1, ShouldBeNil)
				So(errors.Is(err2, repository.ErrActivityFull), ShouldBeTrue)
			})
		})
	})
}

func TestService_Remove(t *testing.T) {
	Convey("Given the default seed", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When removing an enrolled student", func() {
			msg, err := svc.Remove(ctx, "Music Ensemble", "lucas@mergington.edu")

			Convey("Then the student is gone", func() {
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, "Removed lucas@mergington.edu from Music Ensemble")
				So(svc.ListActivities(ctx)["Music Ensemble"].Participants, ShouldNotContain, "lucas@mergington.edu")
			})

			Convey("Then removing again reports not signed up", func() {
				_, err := svc.Remove(ctx, "Music Ensemble", "lucas@mergington.edu")
				So(errors.Is(err, repository.ErrNotSignedUp), ShouldBeTrue)
			})
		})

		Convey("When removing from an unknown activity", func() {
			_, err := svc.Remove(ctx, "Underwater Basket Weaving", "lucas@mergington.edu")

			Convey("Then it fails with not found", func() {
				So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithSeed(smallSeed()), service.WithWorkerCount(2), service.WithQueueSize(64))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then it reports as started with pipeline stats", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats, ShouldContainKey, "queueLength")
			So(stats, ShouldContainKey, "processed")
		})

		Convey("Then starting twice is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("When roster changes flow through the workers and the service stops", func() {
			for i := 0; i < 10; i++ {
				_, err := svc.Signup(ctx, "Baseball Team", fmt.Sprintf("player%d@mergington.edu", i))
				So(err, ShouldBeNil)
			}
			svc.Stop()

			Convey("Then every change reached the journal", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				So(stats["rosterChanges"], ShouldEqual, int64(10))
				So(len(stats["recentChanges"].([]model.RosterEvent)), ShouldEqual, 10)
			})
		})
	})
}

func TestService_ConcurrentSignups(t *testing.T) {
	Convey("Given many students signing up at once", t, func() {
		svc := service.New(service.WithSeed(smallSeed()))
		ctx := context.Background()

		const students = 200
		var wg sync.WaitGroup
		for i := 0; i < students; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = svc.Signup(ctx, "Baseball Team", fmt.Sprintf("s%d@mergington.edu", i))
			}(i)
		}
		wg.Wait()

		Convey("Then no entry is lost or duplicated", func() {
			roster := svc.ListActivities(ctx)["Baseball Team"].Participants
			So(len(roster), ShouldEqual, students)
			seen := make(map[string]struct{}, students)
			for _, email := range roster {
				seen[email] = struct{}{}
			}
			So(len(seen), ShouldEqual, students)
		})
	})
}

func TestService_ListShape(t *testing.T) {
	Convey("Given the default seed", t, func() {
		svc := service.New()

		Convey("Then list values are API activities", func() {
			var a types.Activity = svc.ListActivities(context.Background())["Chess Club"]
			So(a.Description, ShouldNotBeEmpty)
			So(a.Schedule, ShouldNotBeEmpty)
		})
	})
}
