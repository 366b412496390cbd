package backend

import "time"

type BackendConfig struct {
	port    int32
	cluster *TrellisClusterConfig
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

func (c *BackendConfig) Cluster() *TrellisClusterConfig {
	return c.cluster
}

// Configuration for a Trellis cluster.
//
// to get `TrellisClusterConfig` instance, use `TrySeal()` .
type TrellisClusterConfig struct {
	namespace string
	domain    string
	database  string
	schema    string
	storage   *StorageConfig
	auth      *AuthConfig
	sweep     *SweepConfig
}

// k8s namespace where Trellis runs training jobs and endpoints.
func (c *TrellisClusterConfig) Namespace() string {
	return c.namespace
}

// k8s cluster domain. default = "cluster.local"
func (c *TrellisClusterConfig) Domain() string {
	return c.domain
}

// Connection string for database.
func (c *TrellisClusterConfig) Database() string {
	return c.database
}

// Directory holding versioned schema definitions.
func (c *TrellisClusterConfig) Schema() string {
	return c.schema
}

func (c *TrellisClusterConfig) Storage() *StorageConfig {
	return c.storage
}

// Auth is nil when the configuration has no auth section; the API is
// then served without token verification.
func (c *TrellisClusterConfig) Auth() *AuthConfig {
	return c.auth
}

func (c *TrellisClusterConfig) Sweep() *SweepConfig {
	return c.sweep
}

// Configuration for object storage where datasets and artifacts live.
type StorageConfig struct {
	bucket string
}

func (c *StorageConfig) Bucket() string {
	return c.bucket
}

type AuthConfig struct {
	signKey string
	ttl     time.Duration
}

// Key to sign and verify API tokens with HS256.
func (c *AuthConfig) SignKey() string {
	return c.signKey
}

// How long issued tokens stay valid.
func (c *AuthConfig) TTL() time.Duration {
	return c.ttl
}

type SweepConfig struct {
	courtesy time.Duration
}

// Pause between consecutive sweep dispatches.
func (c *SweepConfig) Courtesy() time.Duration {
	return c.courtesy
}
