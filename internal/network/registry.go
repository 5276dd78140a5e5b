package network

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownNetwork = errors.New("unknown network")

// Registry is an immutable lookup of network profiles keyed by chain id.
type Registry struct {
	byChainID   map[int64]Profile
	byName      map[string]int64
	development map[int64]struct{}
	defaults    Profile
}

// NewRegistry builds a registry from explicit profiles. Chain ids listed in
// developmentChainIDs are treated as development networks whether or not they
// have an entry.
func NewRegistry(developmentChainIDs []int64, defaults Profile, profiles ...Profile) (*Registry, error) {
	r := &Registry{
		byChainID:   make(map[int64]Profile, len(profiles)),
		byName:      make(map[string]int64, len(profiles)),
		development: make(map[int64]struct{}, len(developmentChainIDs)),
		defaults:    defaults.clone(),
	}
	r.defaults.IsDevelopment = true

	for _, id := range developmentChainIDs {
		r.development[id] = struct{}{}
	}

	for _, profile := range profiles {
		if profile.ChainID <= 0 {
			return nil, fmt.Errorf("network '%s' has no chain id", profile.Name)
		}
		if existing, ok := r.byChainID[profile.ChainID]; ok {
			return nil, fmt.Errorf("chain id %d is declared by both '%s' and '%s'", profile.ChainID, existing.Name, profile.Name)
		}
		if _, ok := r.byName[profile.Name]; ok {
			return nil, fmt.Errorf("network name '%s' is declared twice", profile.Name)
		}

		if _, ok := r.development[profile.ChainID]; ok {
			profile.IsDevelopment = true
		}
		if profile.IsDevelopment {
			r.development[profile.ChainID] = struct{}{}
			profile = profile.withDefaults(r.defaults)
		} else if profile.BlockConfirmations == 0 {
			return nil, fmt.Errorf("live network '%s' needs block confirmations", profile.Name)
		}

		r.byChainID[profile.ChainID] = profile.clone()
		r.byName[profile.Name] = profile.ChainID
	}

	return r, nil
}

// Resolve returns the profile for chainID. Development chains without an explicit
// entry get a profile synthesized from the development defaults.
func (r *Registry) Resolve(chainID int64) (Profile, error) {
	if profile, ok := r.byChainID[chainID]; ok {
		return profile.clone(), nil
	}

	if r.IsDevelopment(chainID) {
		profile := r.defaults.clone()
		profile.ChainID = chainID
		profile.Name = fmt.Sprintf("development-%d", chainID)
		return profile, nil
	}

	return Profile{}, fmt.Errorf("%w: chain id %d", ErrUnknownNetwork, chainID)
}

// ResolveName returns the profile registered under name.
func (r *Registry) ResolveName(name string) (Profile, error) {
	chainID, ok := r.byName[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: '%s'", ErrUnknownNetwork, name)
	}

	return r.Resolve(chainID)
}

func (r *Registry) IsDevelopment(chainID int64) bool {
	_, ok := r.development[chainID]
	return ok
}

// Profiles lists the explicit profiles ordered by chain id.
func (r *Registry) Profiles() []Profile {
	profiles := make([]Profile, 0, len(r.byChainID))
	for _, profile := range r.byChainID {
		profiles = append(profiles, profile.clone())
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ChainID < profiles[j].ChainID
	})

	return profiles
}
