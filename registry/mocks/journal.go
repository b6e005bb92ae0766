package mocks

import (
	"context"

	"github.com/marcelsud/webhook-resume/registry"
	"github.com/stretchr/testify/mock"
)

// Journal is a testify mock of registry.Journal.
type Journal struct {
	mock.Mock
}

// NewJournal creates a Journal mock whose expectations are asserted
// when the test finishes.
func NewJournal(t interface {
	mock.TestingT
	Cleanup(func())
}) *Journal {
	m := &Journal{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Journal) RecordPending(ctx context.Context, e registry.PendingEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *Journal) RecordOutcome(ctx context.Context, e registry.OutcomeEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *Journal) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
