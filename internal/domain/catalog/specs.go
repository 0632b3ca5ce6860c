package catalog

// The catalog tables are pure lookup data: credit costs, energy deltas,
// prerequisites and capacity contributions for every buildable entry.
// They are consumed read-only by the admission pipeline and capacity service.

var structures = map[string]Spec{
	"urban_structures": {
		Key: "urban_structures", Kind: KindStructure,
		BaseCredits: 40, EnergyDelta: 0, AreaCost: 1,
		EconomyRate: 1,
	},
	"solar_plants": {
		Key: "solar_plants", Kind: KindStructure,
		BaseCredits: 60, EnergyDelta: 2, AreaCost: 1,
	},
	"gas_plants": {
		Key: "gas_plants", Kind: KindStructure,
		BaseCredits: 80, EnergyDelta: 3, AreaCost: 1,
		TechPrereqs: map[string]int{"energy_tech": 1},
	},
	"fusion_plants": {
		Key: "fusion_plants", Kind: KindStructure,
		BaseCredits: 120, EnergyDelta: 4, AreaCost: 1,
		TechPrereqs: map[string]int{"energy_tech": 4},
	},
	"research_labs": {
		Key: "research_labs", Kind: KindStructure,
		BaseCredits: 100, EnergyDelta: -1, AreaCost: 1,
		ResearchRate: 8,
	},
	"metal_refineries": {
		Key: "metal_refineries", Kind: KindStructure,
		BaseCredits: 75, EnergyDelta: -1, AreaCost: 1,
		ConstructionRate: 2, EconomyRate: 2,
	},
	"robotic_factories": {
		Key: "robotic_factories", Kind: KindStructure,
		BaseCredits: 150, EnergyDelta: -1, AreaCost: 1,
		ConstructionRate: 4, ProductionRate: 4,
		TechPrereqs: map[string]int{"computer_tech": 2},
	},
	"shipyards": {
		Key: "shipyards", Kind: KindStructure,
		BaseCredits: 200, EnergyDelta: -1, AreaCost: 1,
		ConstructionRate: 2, ProductionRate: 6,
	},
	"nanite_factories": {
		Key: "nanite_factories", Kind: KindStructure,
		BaseCredits: 400, EnergyDelta: -2, AreaCost: 1,
		ConstructionRate: 8, ProductionRate: 8,
		TechPrereqs: map[string]int{"computer_tech": 10},
	},
}

var techs = map[string]Spec{
	"energy_tech": {
		Key: "energy_tech", Kind: KindTech,
		BaseCredits: 200,
	},
	"computer_tech": {
		Key: "computer_tech", Kind: KindTech,
		BaseCredits: 240,
	},
	"laser_tech": {
		Key: "laser_tech", Kind: KindTech,
		BaseCredits: 220,
		TechPrereqs: map[string]int{"energy_tech": 2},
	},
	"missile_tech": {
		Key: "missile_tech", Kind: KindTech,
		BaseCredits: 220,
	},
	"armour_tech": {
		Key: "armour_tech", Kind: KindTech,
		BaseCredits: 260,
	},
	"shield_tech": {
		Key: "shield_tech", Kind: KindTech,
		BaseCredits: 280,
		TechPrereqs: map[string]int{"energy_tech": 6},
	},
	"cybernetics_tech": {
		Key: "cybernetics_tech", Kind: KindTech,
		BaseCredits: 320,
		TechPrereqs: map[string]int{"computer_tech": 4},
	},
}

var units = map[string]Spec{
	"fighters": {
		Key: "fighters", Kind: KindUnit,
		BaseCredits: 5, PopulationCost: 1,
		RequiredShipyardLevel: 1,
	},
	"scout_ships": {
		Key: "scout_ships", Kind: KindUnit,
		BaseCredits: 10, PopulationCost: 1,
		RequiredShipyardLevel: 1,
		TechPrereqs:           map[string]int{"computer_tech": 1},
	},
	"corvettes": {
		Key: "corvettes", Kind: KindUnit,
		BaseCredits: 20, PopulationCost: 2,
		RequiredShipyardLevel: 2,
		TechPrereqs:           map[string]int{"missile_tech": 1},
	},
	"recyclers": {
		Key: "recyclers", Kind: KindUnit,
		BaseCredits: 30, PopulationCost: 2,
		RequiredShipyardLevel: 2,
	},
	"frigates": {
		Key: "frigates", Kind: KindUnit,
		BaseCredits: 60, PopulationCost: 3,
		RequiredShipyardLevel: 4,
		TechPrereqs:           map[string]int{"armour_tech": 2},
	},
	"destroyers": {
		Key: "destroyers", Kind: KindUnit,
		BaseCredits: 120, PopulationCost: 4,
		RequiredShipyardLevel: 6,
		TechPrereqs:           map[string]int{"shield_tech": 2},
	},
}

var defenses = map[string]Spec{
	"missile_turrets": {
		Key: "missile_turrets", Kind: KindDefense,
		BaseCredits: 25, EnergyDelta: 0, PopulationCost: 1,
	},
	"laser_turrets": {
		Key: "laser_turrets", Kind: KindDefense,
		BaseCredits: 50, EnergyDelta: -1, PopulationCost: 1,
		TechPrereqs: map[string]int{"laser_tech": 2},
	},
	"plasma_turrets": {
		Key: "plasma_turrets", Kind: KindDefense,
		BaseCredits: 150, EnergyDelta: -2, PopulationCost: 2,
		TechPrereqs: map[string]int{"laser_tech": 8},
	},
}
