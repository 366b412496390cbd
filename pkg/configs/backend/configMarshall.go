package backend

import "time"

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type BackendConfigMarshall struct {
	Port    int32                         `yaml:"port"`
	Cluster *TrellisClusterConfigMarshall `yaml:"cluster"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	return &BackendConfig{
		port:    required(b.Port, path+".port"),
		cluster: nonnil(b.Cluster, path+".cluster").trySeal(path + ".cluster"),
	}
}

// Configuration of a Trellis cluster.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `TrellisClusterConfig`.
type TrellisClusterConfigMarshall struct {
	Namespace string                 `yaml:"namespace"`
	Domain    string                 `yaml:"domain,omitempty"`
	Database  string                 `yaml:"database"`
	Schema    string                 `yaml:"schema"`
	Storage   *StorageConfigMarshall `yaml:"storage"`
	Auth      *AuthConfigMarshall    `yaml:"auth"`
	Sweep     *SweepConfigMarshall   `yaml:"sweep,omitempty"`
}

func (cm *TrellisClusterConfigMarshall) trySeal(path string) *TrellisClusterConfig {
	domain := cm.Domain
	if domain == "" {
		domain = "cluster.local"
	}
	sweep := cm.Sweep
	if sweep == nil {
		sweep = &SweepConfigMarshall{}
	}
	// auth is optional. Without it, the API is served without token
	// verification.
	var auth *AuthConfig
	if cm.Auth != nil {
		auth = cm.Auth.trySeal(path + ".auth")
	}
	return &TrellisClusterConfig{
		namespace: required(cm.Namespace, path+".namespace"),
		domain:    domain,
		database:  required(cm.Database, path+".database"),
		schema:    required(cm.Schema, path+".schema"),
		storage:   nonnil(cm.Storage, path+".storage").trySeal(path + ".storage"),
		auth:      auth,
		sweep:     sweep.trySeal(path + ".sweep"),
	}
}

type StorageConfigMarshall struct {
	Bucket string `yaml:"bucket"`
}

func (sm *StorageConfigMarshall) trySeal(path string) *StorageConfig {
	return &StorageConfig{
		bucket: required(sm.Bucket, path+".bucket"),
	}
}

type AuthConfigMarshall struct {
	SignKey    string `yaml:"signKey"`
	TTLSeconds int64  `yaml:"ttlSeconds,omitempty"`
}

func (am *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	ttl := am.TTLSeconds
	if ttl == 0 {
		ttl = int64((24 * time.Hour).Seconds())
	}
	return &AuthConfig{
		signKey: required(am.SignKey, path+".signKey"),
		ttl:     time.Duration(ttl) * time.Second,
	}
}

type SweepConfigMarshall struct {
	CourtesyMilliseconds int64 `yaml:"courtesyMilliseconds,omitempty"`
}

func (sm *SweepConfigMarshall) trySeal(path string) *SweepConfig {
	courtesy := sm.CourtesyMilliseconds
	if courtesy == 0 {
		courtesy = 1000
	}
	return &SweepConfig{
		courtesy: time.Duration(courtesy) * time.Millisecond,
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
