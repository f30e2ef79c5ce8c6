//go:build !windows

package hook

// unsupportedSystem backs DefaultRouter on platforms without low-level
// hooks. Nothing can be installed, so no callback ever runs.
type unsupportedSystem struct{}

func newPlatformSystem() System {
	return unsupportedSystem{}
}

func (unsupportedSystem) Install(Class) (Handle, error) { return 0, ErrNotSupported }

func (unsupportedSystem) Uninstall(Handle) error { return nil }

func (unsupportedSystem) CallNext(Handle, int32, uintptr, uintptr) uintptr { return 0 }

func (unsupportedSystem) KeyDown(uint32) bool { return false }

func (unsupportedSystem) KeyboardRecord(uintptr) (KeyboardRecord, error) {
	return KeyboardRecord{}, ErrBadRecord
}

func (unsupportedSystem) PointerRecord(uintptr) (PointerRecord, error) {
	return PointerRecord{}, ErrBadRecord
}
