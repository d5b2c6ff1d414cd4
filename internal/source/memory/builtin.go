package memory

import "salesdash/internal/core"

// Builtin returns the reference figures for May to July, one dataset per branch.
func Builtin() []core.Dataset {
	return []core.Dataset{mrsBranch(), rs3Branch(), rpkBranch()}
}

func baht(v int64) core.Money { return core.Money{Cents: v * 100} }

func leads(received, closed int) core.LeadCounts {
	return core.LeadCounts{Received: received, Closed: closed}
}

func sales(company string, may, june, july int64) core.SalesRecord {
	return core.SalesRecord{Company: company, May: baht(may), June: baht(june), July: baht(july)}
}

func repeat(company string, may, june, july int64) core.RepeatPurchaseRecord {
	return core.RepeatPurchaseRecord{Company: company, May: baht(may), June: baht(june), July: baht(july)}
}

func conversion(company string, may, june, july core.LeadCounts) core.ConversionRecord {
	return core.ConversionRecord{Company: company, May: may, June: june, July: july}
}

func renewal(company string, may, june, july core.LeadCounts) core.RenewalRecord {
	return core.RenewalRecord{Company: company, May: may, June: june, July: july}
}

func mrsBranch() core.Dataset {
	return core.Dataset{
		Branch: core.MRSBranch,
		Sales: []core.SalesRecord{
			sales("PT Nan", 253511, 250151, 349899),
			sales("PT Ploy", 284710, 223139, 250204),
			sales("PT Ta", 176387, 258343, 200421),
			sales("BT Gate", 52696, 194567, 178314),
			sales("PT Baiyok RS3", 83342, 70394, 48197),
		},
		RepeatPurchase: []core.RepeatPurchaseRecord{
			repeat("PT Nan", 82250, 92124, 65100),
			repeat("PT Ploy", 64450, 68800, 126300),
			repeat("PT Ta", 26750, 47225, 63250),
			repeat("BT Gate", 10600, 13900, 19350),
			repeat("PT Baiyok RS3", 0, 38900, 15800),
		},
		Conversion: []core.ConversionRecord{
			conversion("PT Nan", leads(19, 9), leads(13, 9), leads(14, 10)),
			conversion("PT Ploy", leads(21, 8), leads(13, 6), leads(13, 6)),
			conversion("PT Ta", leads(18, 6), leads(14, 8), leads(13, 9)),
			conversion("BT Gate", leads(19, 5), leads(20, 3), leads(17, 10)),
			conversion("PT Baiyok RS3", leads(5, 5), leads(16, 10), leads(11, 7)),
		},
		Renewal: []core.RenewalRecord{
			renewal("PT Nan", leads(10, 4), leads(17, 6), leads(14, 5)),
			renewal("PT Ploy", leads(7, 3), leads(9, 5), leads(12, 9)),
			renewal("PT Ta", leads(14, 3), leads(7, 5), leads(6, 3)),
			renewal("PT Baiyok RS3", leads(0, 0), leads(2, 1), leads(6, 2)),
			renewal("BT Gate", leads(6, 1), leads(7, 4), leads(1, 1)),
		},
	}
}

func rs3Branch() core.Dataset {
	return core.Dataset{
		Branch: core.RS3Branch,
		Sales: []core.SalesRecord{
			sales("PT Fiat", 0, 184976, 264300),
			sales("BT Aom", 0, 17396, 16197),
		},
		RepeatPurchase: []core.RepeatPurchaseRecord{
			repeat("PT Fiat", 0, 16200, 17510),
			repeat("BT Aom", 0, 0, 3200),
		},
		Conversion: []core.ConversionRecord{
			conversion("PT Fiat", leads(0, 0), leads(12, 6), leads(20, 11)),
			conversion("BT Aom", leads(0, 0), leads(11, 2), leads(10, 2)),
		},
		Renewal: []core.RenewalRecord{
			renewal("PT Fiat", leads(0, 0), leads(2, 2), leads(5, 3)),
			renewal("BT Aom", leads(0, 0), leads(1, 0), leads(2, 2)),
		},
	}
}

func rpkBranch() core.Dataset {
	return core.Dataset{
		Branch: core.RPKBranch,
		Sales: []core.SalesRecord{
			sales("PT Zin", 238780, 228793, 217837),
			sales("PT Yui", 322625, 191236, 257891),
			sales("PT Pim", 188227, 261920, 280473),
			sales("BT Fluke", 103175, 53088, 23628),
		},
		RepeatPurchase: []core.RepeatPurchaseRecord{
			repeat("PT Zin", 60490, 79206, 63015),
			repeat("PT Yui", 79990, 72241, 91230),
			repeat("PT Pim", 30399, 149290, 97240),
			repeat("BT Fluke", 23000, 31566, 0),
		},
		Conversion: []core.ConversionRecord{
			conversion("PT Zin", leads(14, 9), leads(14, 9), leads(16, 8)),
			conversion("PT Yui", leads(19, 8), leads(12, 5), leads(18, 10)),
			conversion("PT Pim", leads(14, 8), leads(13, 6), leads(15, 10)),
			conversion("BT Fluke", leads(14, 6), leads(6, 1), leads(2, 0)),
		},
		Renewal: []core.RenewalRecord{
			renewal("PT Zin", leads(3, 3), leads(5, 5), leads(4, 2)),
			renewal("PT Yui", leads(4, 4), leads(4, 4), leads(7, 7)),
			renewal("PT Pim", leads(1, 1), leads(9, 9), leads(9, 9)),
			renewal("BT Fluke", leads(1, 1), leads(2, 2), leads(1, 0)),
		},
	}
}
