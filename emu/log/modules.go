package log

import "slices"

// A Module is a named log source. Warnings and errors are always emitted,
// debug and info entries only for the modules enabled with EnableDebugModules.
type Module uint

// ModuleMask is a set of modules, bit n stands for module n.
type ModuleMask uint64

const ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF

// Standard modules. Packages may register their own with NewModule.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModMem
	ModHwIo
	ModVIC
	ModInput
	ModSound

	endStandardMods
)

var (
	modNames     = []string{"<error>", "emu", "cpu", "mem", "hwio", "vic", "input", "sound"}
	modCount     = endStandardMods
	modDebugMask ModuleMask
)

// NewModule registers a module. Call it at package initialization.
func NewModule(name string) Module {
	mod := modCount
	modCount++
	modNames = append(modNames, name)
	return mod
}

func ModuleByName(name string) (Module, bool) {
	if idx := slices.Index(modNames, name); idx > 0 {
		return Module(idx), true
	}
	return 0, false
}

// ModuleNames returns the names of all registered modules.
func ModuleNames() []string {
	return slices.Clone(modNames[1:])
}

func EnableDebugModules(mask ModuleMask)  { modDebugMask |= mask }
func DisableDebugModules(mask ModuleMask) { modDebugMask &^= mask }

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return modNames[0]
}

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

func (mod Module) Enabled(level Level) bool {
	return level <= WarnLevel || modDebugMask&mod.Mask() != 0
}

func (mod Module) entry(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	return newEntryZ(mod, lvl, msg)
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.entry(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.entry(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.entry(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.entry(ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.entry(FatalLevel, msg) }
func (mod Module) PanicZ(msg string) *EntryZ { return mod.entry(PanicLevel, msg) }
