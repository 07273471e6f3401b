package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNotFound means the store has no secret for the key.
var ErrNotFound = errors.New("credential not found")

// Store looks up secrets by namespace and key.
type Store interface {
	Get(namespace, key string) (string, error)
}

// KeyringStore reads from the OS keychain.
type KeyringStore struct{}

func (KeyringStore) Get(namespace, key string) (string, error) {
	v, err := keyring.Get(namespace, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring %s/%s: %w", namespace, key, err)
	}
	return v, nil
}

// EnvStore reads NAMESPACE_KEY from the environment, e.g. ALPACA_API_KEY_PAPER.
type EnvStore struct {
	Lookup func(string) (string, bool)
}

func (s EnvStore) Get(namespace, key string) (string, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := strings.ToUpper(namespace + "_" + key)
	if v, ok := lookup(name); ok && v != "" {
		return v, nil
	}
	return "", ErrNotFound
}

// Chain tries each store in turn and returns the first secret found.
type Chain []Store

func (c Chain) Get(namespace, key string) (string, error) {
	for _, s := range c {
		v, err := s.Get(namespace, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}

// BrokerKeys is an API key pair.
type BrokerKeys struct {
	APIKey    string
	APISecret string
}

// LoadBrokerKeys fetches the paper or live key pair from the store.
func LoadBrokerKeys(s Store, namespace string, paper bool) (BrokerKeys, error) {
	keyName, secretName := "api_key", "secret_key"
	if paper {
		keyName, secretName = "api_key_paper", "secret_key_paper"
	}
	apiKey, err := s.Get(namespace, keyName)
	if err != nil {
		return BrokerKeys{}, fmt.Errorf("%s/%s: %w", namespace, keyName, err)
	}
	secret, err := s.Get(namespace, secretName)
	if err != nil {
		return BrokerKeys{}, fmt.Errorf("%s/%s: %w", namespace, secretName, err)
	}
	return BrokerKeys{APIKey: apiKey, APISecret: secret}, nil
}
