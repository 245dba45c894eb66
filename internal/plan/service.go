package plan

import (
	"errors"
	"fmt"
	"io"

	"github.com/tableplan/tableplan/internal/auth"
	"github.com/tableplan/tableplan/internal/session"
	"github.com/tableplan/tableplan/internal/svgio"
	"github.com/tableplan/tableplan/internal/typeid"
)

var (
	ErrNotFound        = errors.New("plan not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrInvalidSVG      = errors.New("invalid svg")
)

// Service runs plan operations for the REST handlers on top of the hub.
type Service struct {
	hub            *session.Hub
	tokens         *auth.Service
	maxImportBytes int64
}

func NewService(hub *session.Hub, tokens *auth.Service, maxImportBytes int64) *Service {
	return &Service{hub: hub, tokens: tokens, maxImportBytes: maxImportBytes}
}

// Created is returned when a plan is made: the token authorises every
// later request for it.
type Created struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type ImportResult struct {
	IDs []string `json:"ids"`
	Seq int64    `json:"seq"`
}

func (s *Service) Create(sample bool) (*Created, error) {
	p := s.hub.Create(sample)
	token, err := s.tokens.IssueToken(p.ID())
	if err != nil {
		s.hub.Delete(p.ID())
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Created{ID: p.ID(), Token: token}, nil
}

func (s *Service) get(planID string) (*session.Plan, error) {
	if err := typeid.Validate(planID, typeid.PrefixPlan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	p, err := s.hub.Get(planID)
	if errors.Is(err, session.ErrPlanNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) Snapshot(planID string) ([]byte, error) {
	p, err := s.get(planID)
	if err != nil {
		return nil, err
	}
	return p.Snapshot()
}

// ReplaceSnapshot swaps the plan's elements for the decoded snapshot and
// pushes the new state to the connected editor.
func (s *Service) ReplaceSnapshot(planID string, data []byte) (int64, error) {
	p, err := s.get(planID)
	if err != nil {
		return 0, err
	}
	seq, err := p.ReplaceSnapshot(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	s.hub.Notify(planID)
	return seq, nil
}

func (s *Service) Delete(planID string) error {
	if err := s.hub.Delete(planID); err != nil {
		if errors.Is(err, session.ErrPlanNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ExportSVG(planID string, w io.Writer) error {
	p, err := s.get(planID)
	if err != nil {
		return err
	}
	return svgio.WriteSVG(w, p.Elements())
}

func (s *Service) ExportPNG(planID string, w io.Writer, width int) error {
	p, err := s.get(planID)
	if err != nil {
		return err
	}
	return svgio.WritePNG(w, p.Elements(), width)
}

func (s *Service) ImportSVG(planID string, r io.Reader) (*ImportResult, error) {
	p, err := s.get(planID)
	if err != nil {
		return nil, err
	}
	ids, seq, err := p.ImportSVG(r, s.maxImportBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSVG, err)
	}
	s.hub.Notify(planID)
	return &ImportResult{IDs: ids, Seq: seq}, nil
}
