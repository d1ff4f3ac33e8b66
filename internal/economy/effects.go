package economy

import "github.com/talgya/lobster-tycoon/internal/config"

// Combine resolves the owned upgrades into one effect set. Numeric bonuses
// take the largest contribution, loss rates take the smallest non-zero one,
// and flags are set when any item sets them. Unknown ids are skipped.
func Combine(owned []config.EquipmentID) config.Effects {
	var out config.Effects
	for _, id := range owned {
		eq, ok := config.EquipmentByID(id)
		if !ok {
			continue
		}
		e := eq.Effects

		out.CapacityBonus = max(out.CapacityBonus, e.CapacityBonus)
		out.ExtraBoats = max(out.ExtraBoats, e.ExtraBoats)
		out.TransactionBonus = max(out.TransactionBonus, e.TransactionBonus)
		out.DeliveryBonus = max(out.DeliveryBonus, e.DeliveryBonus)
		out.MortalityRate = minPositive(out.MortalityRate, e.MortalityRate)
		out.FreshnessDecayMod = minPositive(out.FreshnessDecayMod, e.FreshnessDecayMod)

		out.ContractsEnabled = out.ContractsEnabled || e.ContractsEnabled
		out.PremiumContracts = out.PremiumContracts || e.PremiumContracts
		out.TravelEnabled = out.TravelEnabled || e.TravelEnabled
		out.GradingEnabled = out.GradingEnabled || e.GradingEnabled
		out.RestaurantEnabled = out.RestaurantEnabled || e.RestaurantEnabled
	}
	return out
}

// minPositive treats zero as "unset".
func minPositive(cur, v float64) float64 {
	if v <= 0 {
		return cur
	}
	if cur <= 0 {
		return v
	}
	return min(cur, v)
}

// Mortality returns the effective daily mortality given the base rate.
func Mortality(e config.Effects, base float64) float64 {
	if e.MortalityRate > 0 {
		return e.MortalityRate
	}
	return base
}

// DecayMod returns the freshness decay multiplier, 1 when nothing slows it.
func DecayMod(e config.Effects) float64 {
	if e.FreshnessDecayMod > 0 {
		return e.FreshnessDecayMod
	}
	return 1
}

// Capacity returns the tank capacity given the base.
func Capacity(e config.Effects, base int) int {
	return base + e.CapacityBonus
}
