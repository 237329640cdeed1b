package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// HookResearchModifier is the Lua global consulted for a weapon's research
// multipliers. It receives the weapon ID and returns a table with optional
// number fields damage, range and attack_rate, or nil for no upgrade.
const HookResearchModifier = "research_modifier"

// WeaponInfo is a snapshot of a weapon's combat stats passed to Lua.
type WeaponInfo struct {
	ID         string
	Damage     float64
	Range      float64
	AttackRate float64
}

// Multipliers is the research upgrade a script reports for one weapon.
type Multipliers struct {
	Damage     float64
	Range      float64
	AttackRate float64
}

// Manager owns one sandboxed LState holding the research scripts.
//
// The LState is single-threaded; mu serializes every call into it.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	instLimit int
	logger    *zap.Logger

	// Injected after construction. nil = engine.weapon returns nil.
	GetWeapon func(id string) *WeaponInfo
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates a fresh sandboxed VM, registers the engine.* module, then
// executes every *.lua file in scriptDir in lexicographic order. A previously
// loaded VM is replaced only when loading succeeds.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns an error on directory or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.instLimit = instLimit
	m.mu.Unlock()

	m.logger.Info("research scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases the VM. Safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global with a fresh instruction budget.
// Returns (LNil, nil) if no VM is loaded or the hook is not defined. Lua
// runtime errors are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		return lua.LNil, nil
	}
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	cancel := resetBudget(L, m.instLimit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// ResearchModifier asks the research scripts for weaponID's multipliers.
// Fields the script leaves out default to 1.
//
// Postcondition: ok is false when no script upgrades the weapon.
func (m *Manager) ResearchModifier(weaponID string) (Multipliers, bool) {
	ret, err := m.CallHook(HookResearchModifier, lua.LString(weaponID))
	if err != nil {
		return Multipliers{}, false
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Multipliers{}, false
	}
	return Multipliers{
		Damage:     numberField(tbl, "damage"),
		Range:      numberField(tbl, "range"),
		AttackRate: numberField(tbl, "attack_rate"),
	}, true
}

func numberField(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 1
}
