package engine

// scaledFlavor returns the level-scaled zing and body of the dish's flavor
// axes, with deferred mods previewed while it is still queued.
func (d *Dish) scaledFlavor() (int, int) {
	flavor := d.Flavor
	if d.Phase == PhaseInQueue {
		flavor = flavor.Plus(d.Deferred)
	}
	mult := d.levelMultiplier()
	return max(0, flavor.Zing()) * mult, max(0, flavor.Body()) * mult
}

func (d *Dish) statusTotals() (int, int) {
	var z, b int
	for _, st := range d.Statuses {
		z += st.ZingDelta
		b += st.BodyDelta
	}
	return z, b
}

// RecomputeStats derives base and current zing/body from flavor, level and
// the modifier accumulators. Calling it repeatedly without new modifiers
// yields the same values, and damage already taken is never restored.
func (d *Dish) RecomputeStats() {
	d.PersistZing += d.PendingZing
	d.PersistBody += d.PendingBody
	d.PendingZing, d.PendingBody = 0, 0

	if d.Phase != PhaseInQueue && !d.Deferred.IsZero() {
		mult := d.levelMultiplier()
		d.PersistZing += d.Deferred.Zing() * mult
		d.PersistBody += d.Deferred.Body() * mult
		d.Deferred = FlavorStats{}
	}

	zing, body := d.scaledFlavor()
	d.BaseZing = max(1, zing+d.PairingZing+d.PersistZing)
	d.BaseBody = max(0, body+d.PairingBody+d.PersistBody)

	sz, sb := d.statusTotals()
	d.CurrentZing = max(0, d.BaseZing+sz)
	d.CurrentBody = d.BaseBody + sb - d.Damage
}

// swapStats exchanges current zing and body. The persistent deltas are
// re-anchored so later recomputes keep the swapped values.
func (d *Dish) swapStats() {
	d.RecomputeStats()
	cz, cb := d.CurrentZing, d.CurrentBody
	zing, body := d.scaledFlavor()
	sz, sb := d.statusTotals()

	d.PersistZing = cb - sz - zing - d.PairingZing
	d.PersistBody = cz - sb - body - d.PairingBody
	d.Damage = 0
	d.RecomputeStats()
}
