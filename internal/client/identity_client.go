package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
)

// HTTPIdentityClient talks to the identity/settings collaborator: member
// profiles, enrollment facts with gate verdicts, and the versioned
// compensation plan snapshot.
type HTTPIdentityClient struct {
	Address string
	client  *http.Client
}

func NewHTTPIdentityClient(address string) (*HTTPIdentityClient, error) {
	return &HTTPIdentityClient{
		Address: address,
		client:  &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type memberProfileResponse struct {
	MemberID  string `json:"member_id"`
	SponsorID string `json:"sponsor_id"`
	Category  string `json:"category"`
	Active    bool   `json:"active"`
	Paid      bool   `json:"paid"`
}

type enrollmentFactsResponse struct {
	PersonallyEnrolledActive int             `json:"personally_enrolled_active"`
	Gates                    map[string]bool `json:"gates"`
}

type planResponse struct {
	Version                   string             `json:"version"`
	FastStartAmounts          []float64          `json:"fast_start_amounts"`
	LevelBonusAmounts         []float64          `json:"level_bonus_amounts"`
	MatrixLevelPercent        []float64          `json:"matrix_level_percent"`
	MatrixMaxDepth            int                `json:"matrix_max_depth"`
	CategoryL1Percent         map[string]float64 `json:"category_l1_percent"`
	MatchingPercent           []float64          `json:"matching_percent"`
	CategoryMatchingL1Percent map[string]float64 `json:"category_matching_l1_percent"`
	MinimumPayout             float64            `json:"minimum_payout"`
	CoolingOffHours           int                `json:"cooling_off_hours"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPIdentityClient) getJSON(ctx context.Context, url string, out interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	response, err := c.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("identity service %s: %w", url, domain.ErrNotFound)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil {
			return fmt.Errorf("identity service returned %d", response.StatusCode)
		}
		return errors.New(errResp.Error)
	}
	return json.Unmarshal(responseBodyBytes, out)
}

func (c *HTTPIdentityClient) GetMemberProfile(ctx context.Context, memberID string) (*domain.MemberProfile, error) {
	var resp memberProfileResponse
	url := fmt.Sprintf("%s/members/%s/profile", c.Address, memberID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &domain.MemberProfile{
		MemberID:  resp.MemberID,
		SponsorID: resp.SponsorID,
		Category:  domain.AccountCategory(resp.Category),
		Active:    resp.Active,
		Paid:      resp.Paid,
	}, nil
}

func (c *HTTPIdentityClient) GetEnrollmentFacts(ctx context.Context, memberID string) (*domain.RankFacts, error) {
	var resp enrollmentFactsResponse
	url := fmt.Sprintf("%s/members/%s/enrollment-facts", c.Address, memberID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	facts := &domain.RankFacts{
		PersonallyEnrolledActive: resp.PersonallyEnrolledActive,
		Gates:                    make(map[domain.Gate]bool, len(resp.Gates)),
	}
	for gate, verdict := range resp.Gates {
		facts.Gates[domain.Gate(gate)] = verdict
	}
	return facts, nil
}

// Snapshot fetches the compensation plan; the engine validates it before use.
func (c *HTTPIdentityClient) Snapshot(ctx context.Context) (*domain.CompensationPlan, error) {
	var resp planResponse
	url := fmt.Sprintf("%s/settings/compensation", c.Address)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	plan := &domain.CompensationPlan{
		Version:            resp.Version,
		FastStartAmounts:   resp.FastStartAmounts,
		LevelBonusAmounts:  resp.LevelBonusAmounts,
		MatrixLevelPercent: resp.MatrixLevelPercent,
		MatrixMaxDepth:     resp.MatrixMaxDepth,
		MatchingPercent:    resp.MatchingPercent,
		MinimumPayout:      resp.MinimumPayout,
		CoolingOff:         time.Duration(resp.CoolingOffHours) * time.Hour,
	}
	if len(resp.CategoryL1Percent) > 0 {
		plan.CategoryL1Percent = make(map[domain.AccountCategory]float64, len(resp.CategoryL1Percent))
		for category, rate := range resp.CategoryL1Percent {
			plan.CategoryL1Percent[domain.AccountCategory(category)] = rate
		}
	}
	if len(resp.CategoryMatchingL1Percent) > 0 {
		plan.CategoryMatchingL1Percent = make(map[domain.AccountCategory]float64, len(resp.CategoryMatchingL1Percent))
		for category, rate := range resp.CategoryMatchingL1Percent {
			plan.CategoryMatchingL1Percent[domain.AccountCategory(category)] = rate
		}
	}
	return plan, nil
}
