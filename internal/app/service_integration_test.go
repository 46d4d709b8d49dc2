package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/gamegraph/internal/adapters/steam"
	service "github.com/okian/gamegraph/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

// steamStub serves a tiny Steam Web API: P has friends A (private) and B.
func steamStub() *httptest.Server {
	libraries := map[string]string{
		"P": `{"response":{"games":[{"appid":10,"name":"Portal","playtime_forever":900},{"appid":20,"name":"Apex","playtime_forever":1200}]}}`,
		"B": `{"response":{"games":[{"appid":20,"name":"Apex","playtime_forever":3000},{"appid":30,"name":"Other","playtime_forever":60}]}}`,
		"A": `{"response":{}}`,
	}
	achievements := map[string]string{
		"P/10": `{"playerstats":{"success":true,"achievements":[{"apiname":"a","achieved":1,"unlocktime":1700000000},{"apiname":"b","achieved":0}]}}`,
		"P/20": `{"playerstats":{"success":true,"achievements":[{"apiname":"c","achieved":1,"unlocktime":1700000500}]}}`,
		"B/20": `{"playerstats":{"success":true,"achievements":[{"apiname":"c","achieved":1,"unlocktime":1},{"apiname":"d","achieved":1,"unlocktime":2},{"apiname":"e","achieved":1,"unlocktime":3}]}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v0001/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(libraries[r.URL.Query().Get("steamid")]))
	})
	mux.HandleFunc("/ISteamUserStats/GetPlayerAchievements/v1/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		body, ok := achievements[q.Get("steamid")+"/"+q.Get("appid")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"playerstats":{"error":"Requested app has no stats","success":false}}`))
			return
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/ISteamUser/GetFriendList/v0001/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("steamid") != "P" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"friendslist":{"friends":[{"steamid":"A"},{"steamid":"B"}]}}`))
	})
	mux.HandleFunc("/ISteamUser/GetPlayerSummaries/v0002/", func(w http.ResponseWriter, r *http.Request) {
		var players []string
		for _, id := range strings.Split(r.URL.Query().Get("steamids"), ",") {
			if id == "A" {
				continue
			}
			players = append(players, `{"steamid":"`+id+`","personaname":"name-`+id+`"}`)
		}
		_, _ = w.Write([]byte(`{"response":{"players":[` + strings.Join(players, ",") + `]}}`))
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by the Steam client and a stub API", t, func() {
		srv := steamStub()
		defer srv.Close()

		client := steam.New("key", steam.WithBaseURL(srv.URL), steam.WithTimeout(2*time.Second))
		svc := service.New(client,
			service.WithMinAverageHours(5),
			service.WithClock(func() time.Time { return time.Unix(1700000500+3*3600, 0) }),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When computing the friends view end-to-end", func() {
			view, err := svc.FriendsView(ctx, "P")

			Convey("Then the leaderboard ranks B, P and the private friend", func() {
				So(err, ShouldBeNil)
				So(len(view.Leaderboard), ShouldEqual, 3)
				So(view.Leaderboard[0].DisplayName, ShouldEqual, "name-B")
				So(view.Leaderboard[0].Completed, ShouldEqual, 3)
				So(view.Leaderboard[1].DisplayName, ShouldEqual, "name-P")
				So(view.Leaderboard[1].Completed, ShouldEqual, 2)
				So(view.Leaderboard[2].DisplayName, ShouldEqual, "Private Profile")
				So(view.Leaderboard[2].Completed, ShouldEqual, 0)
			})

			Convey("And popular titles come from the one readable friend", func() {
				So(view.Popular.Hidden, ShouldBeFalse)
				So(len(view.Popular.Games), ShouldEqual, 1)
				So(view.Popular.Games[0].TitleName, ShouldEqual, "Apex")
				So(view.Popular.Games[0].TotalPlaytimeHours, ShouldEqual, 50.0)
			})

			Convey("And the private friend has a zero overlap entry", func() {
				So(len(view.Overlaps), ShouldEqual, 2)
				So(view.Overlaps[0].FriendID, ShouldEqual, "B")
				So(view.Overlaps[0].SharedCount, ShouldEqual, 1)
				So(view.Overlaps[1].FriendID, ShouldEqual, "A")
				So(view.Overlaps[1].FriendName, ShouldEqual, "Unknown")
				So(view.Overlaps[1].SharedCount, ShouldEqual, 0)
			})

			Convey("And recent unlocks render their age", func() {
				So(len(view.Achievements.RecentUnlocks), ShouldEqual, 2)
				So(view.Achievements.RecentUnlocks[0].Age, ShouldEqual, "3 hours ago")
			})
		})

		Convey("When many requests run concurrently", func() {
			var wg sync.WaitGroup
			errs := make([]error, 8)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = svc.FriendsView(ctx, "P")
				}(i)
			}
			wg.Wait()

			Convey("Then all of them succeed", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
				So(svc.GetStats()["requests"], ShouldEqual, int64(8))
			})
		})

		Convey("When the primary account is private", func() {
			_, err := svc.Overview(ctx, "A")

			Convey("Then the request fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "private")
			})
		})
	})
}
