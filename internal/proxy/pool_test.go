package proxy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Server:   "http://gateway.example.com:9000",
		Username: "acct",
		Password: "secret",
	}
}

func TestPoolDisabledWithoutServer(t *testing.T) {
	p, err := NewPool(Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, _, err = p.Checkout(context.Background(), "US")
	assert.Error(t, err)
}

func TestPoolRequiresCredentials(t *testing.T) {
	_, err := NewPool(Config{Server: "http://gateway.example.com:9000"})
	assert.Error(t, err)
}

func TestCheckoutBuildsTargetedIdentity(t *testing.T) {
	p, err := NewPool(testConfig())
	require.NoError(t, err)

	endpoint, release, err := p.Checkout(context.Background(), "br")
	require.NoError(t, err)
	defer release()

	assert.Equal(t, "acct-country-BR", endpoint.Username)
	assert.Equal(t, "secret", endpoint.Password)

	u, err := endpoint.URL()
	require.NoError(t, err)
	assert.Equal(t, "gateway.example.com:9000", u.Host)
	assert.Equal(t, "acct-country-BR", u.User.Username())
}

func TestCheckoutUntargetedWhenRegionEmpty(t *testing.T) {
	p, err := NewPool(testConfig())
	require.NoError(t, err)

	endpoint, release, err := p.Checkout(context.Background(), "")
	require.NoError(t, err)
	defer release()

	assert.Equal(t, "acct", endpoint.Username)
}

func TestSameRegionIsExclusive(t *testing.T) {
	p, err := NewPool(testConfig())
	require.NoError(t, err)

	_, release, err := p.Checkout(context.Background(), "US")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err = p.Checkout(ctx, "US")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	endpoint, release2, err := p.Checkout(context.Background(), "US")
	require.NoError(t, err)
	defer release2()
	assert.Equal(t, "US", endpoint.Region)
}

func TestDifferentRegionsAreConcurrent(t *testing.T) {
	p, err := NewPool(testConfig())
	require.NoError(t, err)

	_, releaseUS, err := p.Checkout(context.Background(), "US")
	require.NoError(t, err)
	defer releaseUS()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, releaseDE, err := p.Checkout(ctx, "DE")
	require.NoError(t, err)
	defer releaseDE()
}

func TestReleaseIsIdempotent(t *testing.T) {
	p, err := NewPool(testConfig())
	require.NoError(t, err)

	_, release, err := p.Checkout(context.Background(), "US")
	require.NoError(t, err)
	release()
	release()

	_, release2, err := p.Checkout(context.Background(), "US")
	require.NoError(t, err)
	release2()
}
