package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SelectionPolicy tunes which department activates by default when a store
// is entered with no usable hint. Keywords are matched against department
// names in order; the first match wins.
type SelectionPolicy struct {
	DepartmentPriority []string `mapstructure:"departmentPriority"`
}

func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{
		DepartmentPriority: []string{"service"},
	}
}

type SelectionPolicyHolder struct {
	current atomic.Value // holds SelectionPolicy
}

func NewSelectionPolicyHolder() (*SelectionPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("pitlane")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/pitlane/config") // Volume-mounted config
	v.AddConfigPath("/etc/pitlane")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("PITLANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSelectionPolicy()
		v.SetDefault("selection.departmentPriority", defaults.DepartmentPriority)
	}

	var policy SelectionPolicy
	if err := v.UnmarshalKey("selection", &policy); err != nil {
		return nil, err
	}
	if err := validateSelectionPolicy(policy); err != nil {
		return nil, err
	}

	holder := &SelectionPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SelectionPolicy
		if err := v.UnmarshalKey("selection", &updated); err != nil {
			log.Printf("[selection-policy] reload failed: %v", err)
			return
		}
		if err := validateSelectionPolicy(updated); err != nil {
			log.Printf("[selection-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[selection-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SelectionPolicyHolder) Get() SelectionPolicy {
	return h.current.Load().(SelectionPolicy)
}

func validateSelectionPolicy(policy SelectionPolicy) error {
	if len(policy.DepartmentPriority) == 0 {
		return errors.New("selection.departmentPriority cannot be empty")
	}
	return nil
}
