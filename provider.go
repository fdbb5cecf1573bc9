package nasc

import (
	"reflect"

	"github.com/pkg/errors"
)

// ComponentProvider groups declarations and ready components of one
// application area.
//
// Example:
//
//	type StorageProvider struct{ DSN string }
//
//	func (p *StorageProvider) Register(n *nasc.Nasc) error {
//	    if err := nasc.Declare[*Settings](n); err != nil {
//	        return err
//	    }
//	    if err := nasc.Add(n, &Settings{DSN: p.DSN}); err != nil {
//	        return err
//	    }
//	    return nasc.Declare[Database](n, nasc.WithConstructor(NewPostgres))
//	}
type ComponentProvider interface {
	Register(n *Nasc) error
}

// BootableProvider is a provider that needs a boot phase. Boot is called by
// BootProviders after all providers are registered, so it can request
// components declared by other providers.
type BootableProvider interface {
	ComponentProvider
	Boot(n *Nasc) error
}

// DeferredProvider is a provider which is registered conditionally.
type DeferredProvider interface {
	ComponentProvider
	ShouldRegister(n *Nasc) bool
}

// providerEntry tracks a registered provider.
type providerEntry struct {
	provider ComponentProvider
	booted   bool
}

// RegisterProvider calls Register of the provider. A provider type is
// registered once, repeated calls with the same type are ignored. Deferred
// providers whose ShouldRegister returns false are skipped.
func (n *Nasc) RegisterProvider(provider ComponentProvider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	if deferred, ok := provider.(DeferredProvider); ok && !deferred.ShouldRegister(n) {
		n.logger.Debug("Provider ", reflect.TypeOf(provider), " is deferred, skipping it")
		return nil
	}

	pt := reflect.TypeOf(provider)
	for _, entry := range n.providers {
		if reflect.TypeOf(entry.provider) == pt {
			return nil
		}
	}

	if err := provider.Register(n); err != nil {
		return errors.Wrapf(err, "provider %v registration failed", pt)
	}

	n.providers = append(n.providers, &providerEntry{provider: provider})
	n.logger.Info("Registered provider ", pt)
	return nil
}

// BootProviders calls Boot of every registered BootableProvider, which was
// not booted yet, in registration order.
func (n *Nasc) BootProviders() error {
	for _, entry := range n.providers {
		if entry.booted {
			continue
		}

		if bootable, ok := entry.provider.(BootableProvider); ok {
			if err := bootable.Boot(n); err != nil {
				return errors.Wrapf(err, "provider %T boot failed", entry.provider)
			}
		}
		entry.booted = true
	}
	return nil
}

// Providers returns registered providers in registration order.
func (n *Nasc) Providers() []ComponentProvider {
	res := make([]ComponentProvider, len(n.providers))
	for i, entry := range n.providers {
		res[i] = entry.provider
	}
	return res
}
