package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := ClientOptions("mongodb://db-1:27017,db-2:27017/?replicaSet=rs0", 3*time.Second)

	require.NoError(t, opts.Validate())
	assert.Equal(t, []string{"db-1:27017", "db-2:27017"}, opts.Hosts)
	assert.Equal(t, "rs0", *opts.ReplicaSet)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	assert.NotNil(t, opts.Monitor)
}

func TestConnectRejectsInvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost", "shop", time.Second)
	assert.ErrorContains(t, err, "connect to MongoDB")
}
