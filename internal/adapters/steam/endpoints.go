package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/tidwall/gjson"
)

const (
	pathOwnedGames      = "/IPlayerService/GetOwnedGames/v0001/"
	pathAchievements    = "/ISteamUserStats/GetPlayerAchievements/v1/"
	pathFriendList      = "/ISteamUser/GetFriendList/v0001/"
	pathPlayerSummaries = "/ISteamUser/GetPlayerSummaries/v0002/"
	pathResolveVanity   = "/ISteamUser/ResolveVanityURL/v0001/"

	vanitySuccess = 1

	// summariesBatch is the most ids GetPlayerSummaries accepts per call.
	summariesBatch = 100

	iconURLFormat = "https://media.steampowered.com/steamcommunity/public/images/apps/%d/%s.jpg"
)

var steamID64 = regexp.MustCompile(`^\d{17}$`)

type ownedGamesResponse struct {
	Response struct {
		Games []struct {
			AppID           int64  `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
			Playtime2Weeks  int    `json:"playtime_2weeks"`
			ImgIconURL      string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// OwnedTitles implements catalog.Catalog. A response without a games list
// means the library is private.
func (c *Client) OwnedTitles(ctx context.Context, id model.AccountID) ([]model.OwnedTitle, error) {
	body, err := c.get(ctx, "owned_games", pathOwnedGames, url.Values{
		"steamid":         {string(id)},
		"include_appinfo": {"1"},
		"format":          {"json"},
	})
	if err != nil {
		if errors.Is(err, catalog.ErrForbidden) || errors.Is(err, catalog.ErrUnauthorized) {
			return nil, catalog.NewPrivateProfile(id)
		}
		return nil, err
	}
	if !gjson.GetBytes(body, "response.games").Exists() {
		return nil, catalog.NewPrivateProfile(id)
	}

	var resp ownedGamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("owned_games: decode: %w: %w", catalog.ErrUpstream, err)
	}
	titles := make([]model.OwnedTitle, 0, len(resp.Response.Games))
	for _, g := range resp.Response.Games {
		t := model.OwnedTitle{
			TitleID:               g.AppID,
			Name:                  g.Name,
			PlaytimeMinutes:       g.PlaytimeForever,
			RecentPlaytimeMinutes: g.Playtime2Weeks,
		}
		if g.ImgIconURL != "" {
			t.IconURL = fmt.Sprintf(iconURLFormat, g.AppID, g.ImgIconURL)
		}
		titles = append(titles, t)
	}
	return titles, nil
}

type achievementsResponse struct {
	PlayerStats struct {
		Success      bool `json:"success"`
		Achievements []struct {
			APIName     string `json:"apiname"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Achieved    int    `json:"achieved"`
			UnlockTime  int64  `json:"unlocktime"`
		} `json:"achievements"`
	} `json:"playerstats"`
}

// Achievements implements catalog.Catalog. A server-reported failure flag
// yields no records rather than an error.
func (c *Client) Achievements(ctx context.Context, id model.AccountID, titleID int64) ([]model.Achievement, error) {
	body, err := c.get(ctx, "achievements", pathAchievements, url.Values{
		"steamid": {string(id)},
		"appid":   {strconv.FormatInt(titleID, 10)},
		"l":       {c.language},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "playerstats.success").Bool() {
		return nil, nil
	}

	var resp achievementsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("achievements: decode: %w: %w", catalog.ErrUpstream, err)
	}
	out := make([]model.Achievement, 0, len(resp.PlayerStats.Achievements))
	for _, a := range resp.PlayerStats.Achievements {
		rec := model.Achievement{
			APIName:     a.APIName,
			Name:        a.Name,
			Description: a.Description,
			Achieved:    a.Achieved == 1,
		}
		if rec.Name == "" {
			rec.Name = a.APIName
		}
		if rec.Achieved && a.UnlockTime > 0 {
			ts := time.Unix(a.UnlockTime, 0).UTC()
			rec.UnlockedAt = &ts
		}
		out = append(out, rec)
	}
	return out, nil
}

// FriendIDs implements catalog.Catalog. Steam answers 401 for a private list.
func (c *Client) FriendIDs(ctx context.Context, id model.AccountID) ([]model.AccountID, error) {
	body, err := c.get(ctx, "friend_list", pathFriendList, url.Values{
		"steamid":      {string(id)},
		"relationship": {"friend"},
	})
	if err != nil {
		return nil, err
	}

	friends := gjson.GetBytes(body, "friendslist.friends.#.steamid").Array()
	out := make([]model.AccountID, 0, len(friends))
	for _, f := range friends {
		if s := f.String(); s != "" {
			out = append(out, model.AccountID(s))
		}
	}
	return out, nil
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
		} `json:"players"`
	} `json:"response"`
}

// DisplayNames implements catalog.Catalog, splitting large sets into the
// batches Steam accepts.
func (c *Client) DisplayNames(ctx context.Context, ids []model.AccountID) (map[model.AccountID]string, error) {
	out := make(map[model.AccountID]string, len(ids))
	for start := 0; start < len(ids); start += summariesBatch {
		end := min(start+summariesBatch, len(ids))
		batch := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, string(id))
		}

		body, err := c.get(ctx, "player_summaries", pathPlayerSummaries, url.Values{
			"steamids": {strings.Join(batch, ",")},
		})
		if err != nil {
			return nil, err
		}
		var resp playerSummariesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("player_summaries: decode: %w: %w", catalog.ErrUpstream, err)
		}
		for _, p := range resp.Response.Players {
			if p.PersonaName != "" {
				out[model.AccountID(p.SteamID)] = p.PersonaName
			}
		}
	}
	return out, nil
}

// ResolveAccount implements catalog.Resolver. A SteamID64 is returned as is;
// anything else is looked up as a vanity name.
func (c *Client) ResolveAccount(ctx context.Context, input string) (model.AccountID, error) {
	input = strings.TrimSpace(input)
	if steamID64.MatchString(input) {
		return model.AccountID(input), nil
	}
	if input == "" {
		return "", fmt.Errorf("resolve: empty input: %w", catalog.ErrNotFound)
	}

	body, err := c.get(ctx, "resolve_vanity", pathResolveVanity, url.Values{
		"vanityurl": {input},
	})
	if err != nil {
		return "", err
	}
	res := gjson.GetBytes(body, "response")
	if res.Get("success").Int() != vanitySuccess || res.Get("steamid").String() == "" {
		return "", fmt.Errorf("resolve %q: %w", input, catalog.ErrNotFound)
	}
	return model.AccountID(res.Get("steamid").String()), nil
}
