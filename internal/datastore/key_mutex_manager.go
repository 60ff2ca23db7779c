package datastore

import (
	"sync"
)

// KeyMutexManager hands out one mutex per key so writers of the same archive
// serialize while different archives proceed in parallel.
type KeyMutexManager struct {
	mutexes map[string]*sync.Mutex
	mapLock sync.RWMutex
}

// NewKeyMutexManager creates a new key mutex manager
func NewKeyMutexManager() *KeyMutexManager {
	return &KeyMutexManager{
		mutexes: make(map[string]*sync.Mutex),
	}
}

// GetMutex returns the mutex for key, creating it on first use
func (kmm *KeyMutexManager) GetMutex(key string) *sync.Mutex {
	kmm.mapLock.RLock()
	mutex, exists := kmm.mutexes[key]
	kmm.mapLock.RUnlock()

	if exists {
		return mutex
	}

	kmm.mapLock.Lock()
	defer kmm.mapLock.Unlock()

	// Double-check after acquiring write lock
	if mutex, exists := kmm.mutexes[key]; exists {
		return mutex
	}

	mutex = &sync.Mutex{}
	kmm.mutexes[key] = mutex
	return mutex
}
