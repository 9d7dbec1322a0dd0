// Package twchart records line follower runs as TWChart sessions. A run is one session, every steering state change
// is an event, and the run is split into stages while the line is followed or lost.
package twchart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/babyapi"
	"github.com/calvinmclean/twchart"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/telemetry"
)

// Phase is the stage of a run
type Phase uint8

const (
	Following Phase = iota
	Lost
)

func (p Phase) String() string {
	if p == Lost {
		return "Lost"
	}
	return "Following"
}

// PhaseFor is Lost while the line is at the edge of the array
func PhaseFor(s lf.SteeringState) Phase {
	if s == lf.LostLeft || s == lf.LostRight {
		return Lost
	}
	return Following
}

// Note describes a frame as an event note, for example "SoftLeft sensors=0010000 L=B3 R=F7"
func Note(f telemetry.Frame) string {
	var b strings.Builder
	b.WriteString(f.State.String())
	b.WriteString(" sensors=")
	b.WriteString(f.Reading.String())
	b.WriteString(" L=")
	writeMotor(&b, f.Command.Left)
	b.WriteString(" R=")
	writeMotor(&b, f.Command.Right)
	return b.String()
}

func writeMotor(b *strings.Builder, cmd lf.MotorCommand) {
	b.WriteByte(cmd.Direction.Code())
	b.WriteString(strconv.Itoa(int(cmd.Duty)))
}

// ErrNoRun is returned when an event is added before StartRun
var ErrNoRun = errors.New("run not started")

// Client writes runs to a TWChart server
type Client struct {
	client    *babyapi.Client[*session]
	sessionID string
}

// session matches the resource served by TWChart
type session struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource
	ID      string `json:"id"`
	Session twchart.Session
}

func (s session) GetID() string {
	return s.ID
}

func NewClient(addr string) *Client {
	return &Client{client: babyapi.NewClient[*session](addr, "/sessions")}
}

// StartRun creates the session for a run that started at start
func (c *Client) StartRun(ctx context.Context, name string, start time.Time) (string, error) {
	resp, err := c.client.Post(ctx, &session{
		Session: twchart.Session{
			Name:      name,
			Date:      start,
			StartTime: start,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	c.sessionID = resp.Data.GetID()
	return c.sessionID, nil
}

// SessionID is the session created by StartRun
func (c *Client) SessionID() string {
	return c.sessionID
}

// AddTransition records a steering state change
func (c *Client) AddTransition(ctx context.Context, f telemetry.Frame, at time.Time) error {
	return c.post(ctx, "/add-event", twchart.Event{Note: Note(f), Time: at})
}

// AddPhase starts a new stage
func (c *Client) AddPhase(ctx context.Context, p Phase, at time.Time) error {
	return c.post(ctx, "/add-stage", twchart.Stage{Name: p.String(), Start: at})
}

// Finish marks the run done
func (c *Client) Finish(ctx context.Context, at time.Time) error {
	return c.post(ctx, "/done", map[string]any{"time": at})
}

func (c *Client) post(ctx context.Context, action string, body any) error {
	if c.sessionID == "" {
		return ErrNoRun
	}

	url, err := c.client.URL(c.sessionID)
	if err != nil {
		return fmt.Errorf("error building url: %w", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+action, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.client.MakeGenericRequest(req, nil)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	if resp.Response.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code: %d, response: %v", resp.Response.StatusCode, resp.Body)
	}

	return nil
}
