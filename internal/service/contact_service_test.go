package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeContacts struct {
	messages []domain.ContactMessage
	err      error
}

func (r *fakeContacts) Create(_ context.Context, m *domain.ContactMessage) error {
	if r.err != nil {
		return r.err
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeContacts) List(_ context.Context, _ int) ([]domain.ContactMessage, error) {
	out := make([]domain.ContactMessage, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		out = append(out, r.messages[i])
	}
	return out, nil
}

func TestContactService_SubmitTrimsInput(t *testing.T) {
	repo := &fakeContacts{}
	svc := NewContactService(repo, zap.NewNop())

	blank := "   "
	msg, err := svc.Submit(context.Background(), ContactInput{
		Name:    "  Ana Cruz ",
		Email:   " ana@example.com ",
		Phone:   &blank,
		Message: "\n Do you ship to Cebu? \n",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", msg.Name)
	assert.Equal(t, "ana@example.com", msg.Email)
	assert.Nil(t, msg.Phone)
	assert.Equal(t, "Do you ship to Cebu?", msg.Message)
	require.Len(t, repo.messages, 1)

	phone := " 0917 123 4567 "
	msg, err = svc.Submit(context.Background(), ContactInput{Name: "Ben", Email: "ben@example.com", Phone: &phone, Message: "Hi"})
	require.NoError(t, err)
	require.NotNil(t, msg.Phone)
	assert.Equal(t, "0917 123 4567", *msg.Phone)

	listed, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Ben", listed[0].Name)
}

func TestContactService_SubmitRejectsInvalid(t *testing.T) {
	repo := &fakeContacts{}
	svc := NewContactService(repo, zap.NewNop())

	cases := map[string]ContactInput{
		"blank name":    {Name: "   ", Email: "ana@example.com", Message: "Hi"},
		"bad email":     {Name: "Ana", Email: "ana-at-example", Message: "Hi"},
		"blank message": {Name: "Ana", Email: "ana@example.com", Message: " \t "},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidContact)
		})
	}
	assert.Empty(t, repo.messages)
}

func TestContactService_StoreFailure(t *testing.T) {
	svc := NewContactService(&fakeContacts{err: errors.New("insert failed")}, zap.NewNop())

	_, err := svc.Submit(context.Background(), ContactInput{Name: "Ana", Email: "ana@example.com", Message: "Hi"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidContact)
}
