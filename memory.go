package a64pipe

// memoryStage is the pure combinational Memory function. It performs
// the load or store the instruction in m names, if any, against dmem.
func memoryStage(m MLatch, dmem DataMemory) (WLatch, MCtrl) {
	if m.Status != StatAOK {
		return WLatch{Status: m.Status, PC: m.PC}, MCtrl{}
	}

	status := m.Status
	var mc MCtrl

	switch {
	case m.Ctrl.IsLoad:
		val, ok := dmem.ReadDoubleWord(m.Xc.AluResult)
		if !ok {
			status = StatAdr
		}
		mc.LoadVal = val

	case m.Ctrl.IsStore:
		if ok := dmem.WriteDoubleWord(m.Xc.AluResult, m.StoreVal); !ok {
			status = StatAdr
		}
	}

	return WLatch{Status: status, PC: m.PC, Ctrl: m.Ctrl, Xc: m.Xc, Mc: mc}, mc
}
