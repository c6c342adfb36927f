package domain

import "github.com/bwmarrin/snowflake"

// Effect is a side effect requested by the reducer. The reducer itself is
// pure; the coordinator executes effects and feeds results back as events.
type Effect interface{ isEffect() }

type EffectLoadProfile struct {
	UserID snowflake.ID
}

type EffectResolveStores struct {
	Epoch uint64
}

type EffectResolveDepartments struct {
	Epoch   uint64
	StoreID snowflake.ID
}

// EffectLoadDependentData asks for the dependent reads (KPI definitions,
// KPI status counts, goal counts, task counts) keyed by the epoch; the
// coordinator answers with DependentDataSettled carrying the same epoch.
type EffectLoadDependentData struct {
	Epoch        uint64
	StoreID      snowflake.ID
	DepartmentID snowflake.ID
}

type EffectClearDependentData struct{}

type EffectPersistStoreHint struct {
	StoreID snowflake.ID
}

type EffectClearStoreHint struct{}

type EffectPersistDepartmentHint struct {
	DepartmentID snowflake.ID
}

type EffectClearDepartmentHint struct{}

func (EffectLoadProfile) isEffect()           {}
func (EffectResolveStores) isEffect()         {}
func (EffectResolveDepartments) isEffect()    {}
func (EffectLoadDependentData) isEffect()     {}
func (EffectClearDependentData) isEffect()    {}
func (EffectPersistStoreHint) isEffect()      {}
func (EffectClearStoreHint) isEffect()        {}
func (EffectPersistDepartmentHint) isEffect() {}
func (EffectClearDepartmentHint) isEffect()   {}
