package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.log(msg)     writes msg to the server log at info level
//	engine.weapon(id)   returns {id, damage, range, attack_rate} or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetField(engine, "weapon", L.NewFunction(m.luaWeapon))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}

func (m *Manager) luaWeapon(L *lua.LState) int {
	id := L.CheckString(1)
	if m.GetWeapon == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetWeapon(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LString(info.ID))
	tbl.RawSetString("damage", lua.LNumber(info.Damage))
	tbl.RawSetString("range", lua.LNumber(info.Range))
	tbl.RawSetString("attack_rate", lua.LNumber(info.AttackRate))
	L.Push(tbl)
	return 1
}
