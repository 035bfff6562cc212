package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func TestHealthCheck(t *testing.T) {
	status := NewHealthService(fakePinger{}).Check(context.Background())
	assert.Equal(t, StatusUp, status.Mongo)
	assert.True(t, status.Healthy())

	status = NewHealthService(fakePinger{err: errors.New("no reachable servers")}).Check(context.Background())
	assert.Equal(t, StatusDown, status.Mongo)
	assert.False(t, status.Healthy())
}
