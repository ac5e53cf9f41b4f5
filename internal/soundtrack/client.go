package soundtrack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog/log"
)

// requestTimeout bounds every call to the zone-control API so a hung
// request cannot stall an evaluation cycle.
const requestTimeout = 15 * time.Second

// ControllerError wraps any failure talking to the zone volume service.
type ControllerError struct {
	Op     string
	ZoneID string
	Err    error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("soundtrack %s zone %s: %v", e.Op, e.ZoneID, e.Err)
}

func (e *ControllerError) Unwrap() error { return e.Err }

type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Zones []Zone `json:"zones"`
}

const getAccountQuery = `
query GetAccount($accountId: String!) {
  account(id: $accountId) {
    id
    name
    zones {
      items {
        id
        name
      }
    }
  }
}`

const getZoneVolumeQuery = `
query GetZoneVolume($zoneId: String!) {
  soundZone(id: $zoneId) {
    id
    name
    volume
  }
}`

const setVolumeMutation = `
mutation SetVolume($soundZone: String!, $volume: Int!) {
  setSoundZoneVolume(input: { soundZone: $soundZone, volume: $volume }) {
    soundZone {
      id
      volume
    }
  }
}`

// Client is a thin wrapper over the zone-control GraphQL API.
type Client struct {
	gql   *graphql.Client
	token string
}

func NewClient(apiURL, apiToken string) *Client {
	return newClient(apiURL, apiToken, requestTimeout)
}

func newClient(apiURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		gql:   graphql.NewClient(apiURL, graphql.WithHTTPClient(&http.Client{Timeout: timeout})),
		token: apiToken,
	}
}

func (c *Client) run(ctx context.Context, req *graphql.Request, into interface{}) error {
	req.Header.Set("Authorization", "Basic "+c.token)
	return c.gql.Run(ctx, req, into)
}

// GetAccount lists an account and its zones; operators use it to resolve
// zone ids for new schedules.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	req := graphql.NewRequest(getAccountQuery)
	req.Var("accountId", accountID)

	var resp struct {
		Account struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Zones struct {
				Items []Zone `json:"items"`
			} `json:"zones"`
		} `json:"account"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to fetch account")
		return nil, &ControllerError{Op: "account", Err: err}
	}
	return &Account{
		ID:    resp.Account.ID,
		Name:  resp.Account.Name,
		Zones: resp.Account.Zones.Items,
	}, nil
}

// GetVolume reads a zone's current volume.
func (c *Client) GetVolume(ctx context.Context, zoneID string) (int, error) {
	req := graphql.NewRequest(getZoneVolumeQuery)
	req.Var("zoneId", zoneID)

	var resp struct {
		SoundZone struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Volume int    `json:"volume"`
		} `json:"soundZone"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		log.Error().Err(err).Str("zone_id", zoneID).Msg("failed to fetch zone volume")
		return 0, &ControllerError{Op: "get volume", ZoneID: zoneID, Err: err}
	}
	return resp.SoundZone.Volume, nil
}

// SetVolume sets a zone's volume, clamped to [0,100].
func (c *Client) SetVolume(ctx context.Context, zoneID string, volume int) error {
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}

	req := graphql.NewRequest(setVolumeMutation)
	req.Var("soundZone", zoneID)
	req.Var("volume", volume)

	var resp struct {
		SetSoundZoneVolume struct {
			SoundZone struct {
				ID     string `json:"id"`
				Volume int    `json:"volume"`
			} `json:"soundZone"`
		} `json:"setSoundZoneVolume"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		log.Error().Err(err).Str("zone_id", zoneID).Int("volume", volume).Msg("failed to set zone volume")
		return &ControllerError{Op: "set volume", ZoneID: zoneID, Err: err}
	}
	log.Info().Str("zone_id", zoneID).Int("volume", volume).
		Int("reported_volume", resp.SetSoundZoneVolume.SoundZone.Volume).Msg("set zone volume")
	return nil
}

// Mute sets a zone to volume 0 and returns the volume it had before. A zone
// already at 0 is left alone and 0 is returned, so repeated calls issue at
// most one mutation.
func (c *Client) Mute(ctx context.Context, zoneID string) (int, error) {
	current, err := c.GetVolume(ctx, zoneID)
	if err != nil {
		return 0, err
	}
	if current == 0 {
		return 0, nil
	}
	if err := c.SetVolume(ctx, zoneID, 0); err != nil {
		return 0, err
	}
	return current, nil
}

// Unmute restores a zone to the given volume.
func (c *Client) Unmute(ctx context.Context, zoneID string, restoreVolume int) error {
	return c.SetVolume(ctx, zoneID, restoreVolume)
}
