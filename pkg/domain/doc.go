// Package domain holds the core types of Trellis.
//
// An Experiment groups Trials; a Trial references Trial Components;
// a Trial Component records parameters, artifacts and metric series
// logged before or during a training job.
//
// Types here are store-agnostic. Persistence lives under
// pkg/domain/<entity>/db and its postgres implementations.
package domain
