package normalize

import "github.com/dmitrijs2005/valuationdesk/internal/report/fields"

// section describes one nested form section and how its fields map onto
// flat names. Candidate paths are relative to the section key and ordered
// lowest priority first, as everywhere in package fields.
type section struct {
	key   string
	rules []fields.Rule
}

func m(to string, from ...string) fields.Rule {
	if len(from) == 0 {
		from = []string{to}
	}
	return fields.Rule{Field: to, Paths: from}
}

// sections is applied in order; a later section overrides an earlier one
// for the same flat name when it supplies a value.
var sections = []section{
	{key: "documentInformation", rules: []fields.Rule{
		m("branch"),
		m("dateOfInspection"),
		m("dateOfValuation"),
		m("valuationPurpose"),
	}},
	{key: "ownerDetails", rules: []fields.Rule{
		m("ownerNameAddress"),
		m("briefDescriptionProperty", "propertyDescription"),
	}},
	{key: "cityAreaType", rules: []fields.Rule{
		m("cityTown"),
	}},
	{key: "areaClassification", rules: []fields.Rule{
		m("areaClassification"),
		m("urbanClassification", "areaType"),
		m("governmentType", "govGovernance"),
		m("govtEnactmentsCovered", "stateGovernmentEnactments"),
	}},
	{key: "locationOfProperty", rules: []fields.Rule{
		m("plotSurveyNo"),
		m("doorNo"),
		m("tpVillage", "tsVillage"),
		m("wardTaluka"),
		m("mandalDistrict"),
		m("layoutPlanIssueDate", "dateLayoutIssueValidity"),
		m("approvedMapAuthority", "approvedMapIssuingAuthority"),
		m("postalAddress"),
		m("residentialArea"),
		m("commercialArea"),
		m("industrialArea"),
		m("areaClassification"),
	}},
	{key: "propertyBoundaries", rules: []fields.Rule{
		m("boundariesPlotNorth", "plotBoundaries.north"),
		m("boundariesPlotSouth", "plotBoundaries.south"),
		m("boundariesPlotEast", "plotBoundaries.east"),
		m("boundariesPlotWest", "plotBoundaries.west"),
	}},
	{key: "propertyDimensions", rules: []fields.Rule{
		m("dimensionsDeed", "dimensionsAsPerDeed"),
		m("dimensionsActual", "actualDimensions"),
		m("extentOfUnit", "extent"),
		m("latitudeLongitude", "latitudeLongitudeCoordinates"),
		m("extentOfSiteValuation", "extentSiteConsideredValuation"),
	}},
	{key: "rateInfo", rules: []fields.Rule{
		m("comparableRate", "comparableRateSimilarUnit"),
		m("adoptedBasicCompositeRate"),
		m("buildingServicesRate"),
		m("landOthersRate"),
	}},
	{key: "rateValuation", rules: []fields.Rule{
		m("comparableRate", "comparableRateSimilarUnitPerSqft"),
		m("adoptedBasicCompositeRate", "adoptedBasicCompositeRatePerSqft"),
		m("buildingServicesRate", "buildingServicesRatePerSqft"),
		m("landOthersRate", "landOthersRatePerSqft"),
	}},
	{key: "compositeRateDepreciation", rules: []fields.Rule{
		m("depreciatedBuildingRate", "depreciatedBuildingRatePerSqft"),
		m("replacementCostServices", "replacementCostUnitServicesPerSqft"),
		m("buildingAge", "ageOfBuildingYears"),
		m("buildingLife", "lifeOfBuildingEstimatedYears"),
		m("depreciationPercentage", "depreciationPercentageSalvage"),
		m("deprecatedRatio", "depreciatedRatioBuilding"),
		m("totalCompositeRate", "totalCompositeRatePerSqft"),
		m("rateForLandOther", "rateLandOtherV3IIPerSqft"),
		m("guidelineRate", "guidelineRatePerSqm"),
	}},
	{key: "compositeRate", rules: []fields.Rule{
		m("depreciatedBuildingRate"),
		m("replacementCostServices", "replacementCostUnitServices"),
		m("buildingAge", "ageOfBuilding"),
		m("buildingLife", "lifeOfBuildingEstimated"),
		m("depreciationPercentage", "depreciationPercentageSalvage"),
		m("deprecatedRatio", "depreciatedRatioBuilding"),
		m("totalCompositeRate"),
		m("rateForLandOther", "rateLandOtherV3II"),
		m("guidelineRate", "guidelineRateRegistrar"),
	}},
	{key: "valuationResults", rules: []fields.Rule{
		m("fairMarketValue"),
		m("realizableValue"),
		m("distressValue"),
		m("saleDeedValue"),
		m("insurableValue"),
		m("rentReceivedPerMonth"),
		m("marketability"),
	}},
	{key: "buildingConstruction", rules: []fields.Rule{
		m("yearOfConstruction"),
		m("numberOfFloors"),
		m("numberOfDwellingUnits"),
		m("typeOfStructure"),
		m("qualityOfConstruction"),
		m("appearanceOfBuilding"),
		m("maintenanceOfBuilding"),
	}},
	{key: "electricityService", rules: []fields.Rule{
		m("electricityServiceConnectionNo"),
		m("meterCardName"),
	}},
	{key: "unitTax", rules: []fields.Rule{
		m("assessmentNo"),
		m("taxPaidName"),
		m("taxAmount"),
	}},
	{key: "unitMaintenance", rules: []fields.Rule{
		m("unitMaintenance", "unitMaintenanceStatus"),
	}},
	{key: "unitSpecifications", rules: []fields.Rule{
		m("floorUnit", "floorLocation"),
		m("doorNoUnit"),
		m("roofUnit", "roof"),
		m("flooringUnit", "flooring"),
		m("doorsUnit", "doors"),
		m("windowsUnit", "windows"),
		m("fittingsUnit", "fittings"),
		m("finishingUnit", "finishing"),
		m("unitBathAndWC", "bathAndWC"),
		m("unitElectricalWiring", "electricalWiring"),
		m("unitWindows", "windows"),
		m("unitSpecification", "specification"),
	}},
	{key: "unitAreaDetails", rules: []fields.Rule{
		m("undividedLandArea", "undividedLandArea", "undividedLandAreaSaleDeed"),
		m("plinthArea", "plinthArea", "plinthAreaUnit"),
		m("carpetArea", "carpetArea", "carpetAreaUnit"),
	}},
	{key: "unitClassification", rules: []fields.Rule{
		m("floorSpaceIndex"),
		m("unitClassification", "classification", "unitClassification"),
		m("residentialOrCommercial", "usageType", "residentialOrCommercial"),
		m("ownerOccupiedOrLetOut", "occupancyType", "ownerOccupiedOrLetOut"),
		m("numberOfDwellingUnits"),
	}},
	{key: "apartmentLocation", rules: []fields.Rule{
		m("apartmentNature"),
		m("apartmentLocation", "location", "apartmentLocation"),
		m("apartmentCTSNo", "cTSNo", "ctsNo", "apartmentCTSNo"),
		m("apartmentTSNo", "apartmentCTSNo", "plotSurveyNo", "tSNo", "ctsNo", "tsNo"),
		m("apartmentBlockNo", "apartmentBlockNo", "blockNumber", "block", "blockNo"),
		m("apartmentWardNo", "apartmentWardNo", "wardNumber", "ward", "wardNo"),
		m("apartmentVillageMunicipalityCounty",
			"apartmentVillageMunicipalityCounty", "tsVillage", "municipality", "village", "villageOrMunicipality"),
		m("apartmentDoorNoStreetRoad",
			"apartmentDoorNoStreetRoad", "roadName", "doorNumber", "street", "streetRoad", "doorNo", "doorNoStreetRoadPinCode"),
		m("apartmentPinCode", "apartmentPinCode", "pinCode"),
	}},
	{key: "monthlyRent", rules: []fields.Rule{
		m("monthlyRent", "ifRentedMonthlyRent"),
	}},
	{key: "marketability", rules: []fields.Rule{
		m("marketability", "howIsMarketability"),
		m("favoringFactors", "factorsFavouringExtraPotential"),
		m("negativeFactors", "negativeFactorsAffectingValue"),
	}},
	{key: "signatureReport", rules: []fields.Rule{
		m("valuationPlace", "place"),
		m("valuationDate", "signatureDate"),
		m("valuersName", "signerName"),
		m("reportDate"),
	}},
	{key: "additionalFlatDetails", rules: []fields.Rule{
		m("areaUsage"),
		m("carpetArea", "carpetAreaFlat"),
	}},
	{key: "guidelineRate", rules: []fields.Rule{
		m("guidelineRate", "guidelineRatePerSqm"),
	}},
	{key: "documentsProduced", rules: []fields.Rule{
		m("agreementForSale", "photocopyCopyAgreement"),
		m("commencementCertificate"),
		m("occupancyCertificate"),
	}},
}

// aliases reconciles field names renamed across form versions. It runs over
// the merged flat map, so every path is a flat name.
var aliases = fields.MustCompile("flat-v1", []fields.Rule{
	fields.Alias("inspectionDate", "dateOfInspection"),
	fields.Alias("valuationPurpose", "purposeOfValuation"),
	fields.Alias("valuationMadeDate", "dateOfValuation", "dateOfValuationMade"),
	fields.Alias("plotNo", "plotSurveyNo"),
	fields.Alias("tsNoVillage", "tpVillage"),
	fields.Alias("layoutIssueDate", "layoutPlanIssueDate"),
	fields.Alias("mapVerified", "authenticityVerified"),
	fields.Alias("valuersComments", "valuerCommentOnAuthenticity"),
	fields.Alias("urbanType", "urbanClassification"),
	fields.Alias("jurisdictionType", "governmentType"),
	fields.Alias("enactmentCovered", "govtEnactmentsCovered"),

	fields.Alias("extentUnit", "extentOfUnit", "extent"),
	fields.Alias("extentSiteValuation", "extentOfSiteValuation"),
	fields.Alias("apartmentCTSNo", "cTSNo", "ctsNo"),
	fields.Alias("apartmentTSNo", "apartmentCTSNo", "tsNo"),
	fields.Alias("apartmentBlockNo", "blockNo"),
	fields.Alias("apartmentWardNo", "wardNo"),
	fields.Alias("apartmentMunicipality", "villageOrMunicipality", "apartmentVillageMunicipalityCounty"),
	fields.Alias("apartmentDoorNoStreetRoad",
		"streetRoad", "doorNo", "doorNoStreetRoadPinCode", "apartmentDoorNoStreetRoadPinCode", "apartmentDoorNoPin"),
	fields.Alias("apartmentPinCode", "pinCode"),
	fields.Alias("localityDescription", "descriptionOfLocalityResidentialCommercialMixed"),

	fields.Alias("yearConstruction", "yearOfConstruction"),
	fields.Alias("structureType", "typeOfStructure"),
	fields.Alias("numberOfDwellingUnits", "numberOfDwellingUnitsInBuilding", "dwellingUnits"),
	fields.Alias("qualityConstruction", "qualityOfConstruction"),
	fields.Alias("buildingAppearance", "appearanceOfBuilding"),
	fields.Alias("buildingMaintenance", "maintenanceOfBuilding"),
	fields.Alias("unitMaintenance", "unitMaintenanceStatus"),
	fields.Alias("unitClassification", "classificationPosh"),
	fields.Alias("residentialOrCommercial", "classificationUsage"),
	fields.Alias("ownerOccupiedOrLetOut", "classificationOwnership", "ownerOccupancyStatus"),
	{Field: "classificationPosh", Paths: []string{"classificationPosh", "unitClassification"}},

	fields.Alias("facilityLift", "liftAvailable"),
	fields.Alias("facilityWater", "protectedWaterSupply"),
	fields.Alias("facilitySump", "undergroundSewerage"),
	fields.Alias("facilityParking", "carParkingOpenCovered", "carParkingType"),
	fields.Alias("facilityCompoundWall", "isCompoundWallExisting", "compoundWallExisting", "compoundWall"),
	fields.Alias("facilityPavement", "isPavementLaidAroundBuilding", "pavementAroundBuilding", "pavement"),
	fields.Alias("facilityOthers", "othersFacility"),
	fields.Alias("compoundWall", "isCompoundWallExisting", "compoundWallExisting"),
	fields.Alias("pavement", "isPavementLaidAroundBuilding", "pavementAroundBuilding"),

	fields.Alias("floorUnit", "unitFloor", "floorLocation"),
	fields.Alias("doorNoUnit", "unitDoorNo"),
	fields.Alias("roofUnit", "unitRoof", "roof"),
	fields.Alias("flooringUnit", "unitFlooring", "flooring"),
	fields.Alias("doorsUnit", "unitDoors", "doors"),
	fields.Alias("windowsUnit", "unitWindows", "windows"),
	fields.Alias("unitBathAndWC", "bathAndWC"),
	fields.Alias("unitElectricalWiring", "electricalWiring"),
	fields.Alias("unitSpecification", "specification"),
	fields.Alias("fittingsUnit", "unitFittings", "fittings"),
	fields.Alias("finishingUnit", "unitFinishing", "finishing"),

	fields.Alias("electricityConnectionNo", "electricityServiceConnectionNo", "electricityServiceNo"),
	fields.Alias("meterCardName", "electricityServiceConnectionNo"),
	fields.Alias("agreementForSale", "agreementSaleExecutedName"),
	fields.Alias("undividedLandArea", "undividedArea", "undividedAreaLand", "undividedLandAreaSaleDeed"),
	fields.Alias("carpetArea", "areaUsage", "carpetAreaFlat"),

	fields.Alias("ratePerSqft", "adoptedBasicCompositeRate", "presentValueRate"),
	fields.Alias("marketValue", "fairMarketValue"),
	fields.Alias("marketValueWords", "fairMarketValueWords"),
	fields.Alias("fairMarketValueWords", "marketValueWords"),
	fields.Alias("finalMarketValue", "fairMarketValue"),
	fields.Alias("finalMarketValueWords", "fairMarketValueWords"),
	fields.Alias("realisableValue", "realizableValue"),
	fields.Alias("finalDistressValue", "distressValue"),
	fields.Alias("finalDistressValueWords", "distressValueWords"),
	fields.Alias("readyReckonerValue", "totalJantriValue"),
	fields.Alias("rentReceivedPerMonth", "monthlyRent"),
	fields.Alias("marketabilityRating", "marketability"),
	fields.Alias("compositeRateAnalysis", "comparableRate"),
	fields.Alias("newConstructionRate", "adoptedBasicCompositeRate"),

	fields.Alias("valuationPlace", "place"),
	fields.Alias("valuationDate", "valuationMadeDate", "signatureDate"),
	fields.Alias("valuersName", "signerName"),

	fields.Alias("depreciatedBuildingRateFinal", "depreciatedBuildingRate"),
	fields.Alias("buildingAgeDepreciation", "buildingAge"),
	fields.Alias("buildingLifeEstimated", "buildingLife"),
	fields.Alias("depreciationPercentageFinal", "depreciationPercentage"),
	fields.Alias("depreciatedRatio", "deprecatedRatio"),
	fields.Alias("totalCompositeRate", "adoptedBasicCompositeRate"),
	fields.Alias("guidelineRate", "guidelineRatePerSqm"),
	fields.Alias("rateLandOther", "rateForLandOther"),
	fields.Alias("totalEstimatedValue", "totalValuationItems"),
	fields.Alias("valuationItem1", "presentValue"),
})
