package store

import "github.com/suntrap/buildboard/kernel/model"

// Built-in data set served when no fixtures file is configured.

var defaultUser = model.User{ID: "dev-user", Email: "dev@example.com", Name: "Dev User", Role: "developer"}

func defaultBuildStatus() model.RegionInventory {
	return model.RegionInventory{
		"cbg": {
			{RackID: "1-E", Hostname: "th-12345-45", DBID: "305589", SerialNumber: "483446357", PercentBuilt: 55, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "6-E", Hostname: "ab-98765-123", DBID: "231401", SerialNumber: "544877182", PercentBuilt: 65, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "3-6", Hostname: "cd-45678-89", DBID: "52834", SerialNumber: "177514038", PercentBuilt: 96, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "3-G", Hostname: "ef-11111-1", DBID: "873243", SerialNumber: "530328492", PercentBuilt: 16, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "8-5", Hostname: "gh-22222-22", DBID: "441381", SerialNumber: "134822229", PercentBuilt: 66, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "1-C", Hostname: "ij-33333-333", DBID: "751289", SerialNumber: "903133629", PercentBuilt: 20, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "4-F", Hostname: "kl-44444-44", DBID: "773435", SerialNumber: "250995085", PercentBuilt: 49, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "8-2", Hostname: "mn-55555-55", DBID: "616757", SerialNumber: "645761008", PercentBuilt: 21, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "S1-A", Hostname: "op-66666-6", DBID: "123456", SerialNumber: "987654321", PercentBuilt: 30, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Small Server", Status: model.BuildStatusInstalling},
			{RackID: "S2-B", Hostname: "qr-77777-77", DBID: "234567", SerialNumber: "876543210", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Small Server", Status: model.BuildStatusComplete},
			{RackID: "S1-C", Hostname: "st-88888-888", DBID: "345678", SerialNumber: "765432109", PercentBuilt: 45, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Small Server", Status: model.BuildStatusFailed},
		},
		"dub": {
			{RackID: "6-C", Hostname: "uv-99999-99", DBID: "996783", SerialNumber: "841472939", PercentBuilt: 49, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "3-1", Hostname: "wx-10101-101", DBID: "801045", SerialNumber: "632685004", PercentBuilt: 6, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "5-E", Hostname: "yz-20202-202", DBID: "759751", SerialNumber: "832651260", PercentBuilt: 29, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "5-F", Hostname: "ab-30303-3", DBID: "234841", SerialNumber: "384741486", PercentBuilt: 46, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
		},
		"dal": {
			{RackID: "1-F", Hostname: "cd-40404-404", DBID: "912039", SerialNumber: "802113764", PercentBuilt: 34, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "5-A", Hostname: "ef-50505-50", DBID: "665243", SerialNumber: "253232262", PercentBuilt: 43, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "3-E", Hostname: "gh-60606-606", DBID: "639296", SerialNumber: "467416621", PercentBuilt: 64, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
			{RackID: "5-D", Hostname: "ij-70707-7", DBID: "408892", SerialNumber: "774101658", PercentBuilt: 13, AssignedStatus: model.AssignedStatusNotAssigned, MachineType: "Server", Status: model.BuildStatusInstalling},
		},
	}
}

func defaultBuildHistory() model.RegionInventory {
	return model.RegionInventory{
		"cbg": {
			{RackID: "1-E", Hostname: "iernfgwkf", DBID: "305589", SerialNumber: "483446357", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
			{RackID: "6-E", Hostname: "fnahcyoier", DBID: "231401", SerialNumber: "544877182", PercentBuilt: 100, AssignedStatus: model.AssignedStatusAssigned},
			{RackID: "3-6", Hostname: "hjnte", DBID: "52834", SerialNumber: "177514038", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
			{RackID: "3-G", Hostname: "xtvbuvx", DBID: "873243", SerialNumber: "530328492", PercentBuilt: 100, AssignedStatus: model.AssignedStatusAssigned},
			{RackID: "8-5", Hostname: "cjvemhku", DBID: "441381", SerialNumber: "134822229", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
		},
		"dub": {
			{RackID: "6-C", Hostname: "jeqzdjeqp", DBID: "996783", SerialNumber: "841472939", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
			{RackID: "3-1", Hostname: "myvwteavhg", DBID: "801045", SerialNumber: "632685004", PercentBuilt: 100, AssignedStatus: model.AssignedStatusAssigned},
			{RackID: "5-E", Hostname: "eporghuwq", DBID: "759751", SerialNumber: "832651260", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
		},
		"dal": {
			{RackID: "1-F", Hostname: "genops", DBID: "912039", SerialNumber: "802113764", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
			{RackID: "5-A", Hostname: "lhtts", DBID: "665243", SerialNumber: "253232262", PercentBuilt: 100, AssignedStatus: model.AssignedStatusAssigned},
			{RackID: "3-E", Hostname: "kexnupldux", DBID: "639296", SerialNumber: "467416621", PercentBuilt: 100, AssignedStatus: model.AssignedStatusNotAssigned},
		},
	}
}

func defaultDetails(hostname string) model.ServerDetails {
	return model.ServerDetails{
		Server: model.Server{
			RackID:         "1-E",
			Hostname:       hostname,
			DBID:           "305589",
			SerialNumber:   "483446357",
			PercentBuilt:   55,
			AssignedStatus: model.AssignedStatusNotAssigned,
			MachineType:    "Server",
			Status:         model.BuildStatusInstalling,
		},
		IPAddress:           "192.168.1.100",
		MACAddress:          "00:1B:44:11:3A:B7",
		CPUModel:            "Intel Xeon E5-2680 v4",
		RAMGB:               64,
		StorageGB:           2000,
		InstallStartTime:    "2025-01-15T10:30:00Z",
		EstimatedCompletion: "2025-01-15T14:45:00Z",
		LastHeartbeat:       "2025-01-15T12:15:30Z",
	}
}

func hardware(os, ram, storage string) model.ConfigMap {
	return model.ConfigMap{{Key: "os", Value: os}, {Key: "ram", Value: ram}, {Key: "storage", Value: storage}}
}

func defaultPreconfigs() []model.Preconfig {
	return []model.Preconfig{
		{ID: "1", Depot: 1, Config: hardware("ubuntu-20.04", "64GB", "2TB"), CreatedAt: "2025-01-15T10:00:00Z"},
		{ID: "2", Depot: 1, Config: hardware("centos-8", "32GB", "1TB"), CreatedAt: "2025-01-15T11:00:00Z"},
		{ID: "3", Depot: 2, Config: hardware("ubuntu-22.04", "128GB", "4TB"), CreatedAt: "2025-01-15T12:00:00Z"},
		{ID: "4", Depot: 4, Config: hardware("debian-11", "64GB", "2TB"), CreatedAt: "2025-01-15T13:00:00Z"},
		{ID: "5", Depot: 4, Config: hardware("ubuntu-20.04", "32GB", "1TB"), CreatedAt: "2025-01-15T14:00:00Z"},
	}
}

func defaultPushedPreconfigs() []model.PushedPreconfig {
	return []model.PushedPreconfig{
		{ID: "p1", Depot: 1, Config: hardware("ubuntu-20.04", "64GB", "2TB"), PushedAt: "2025-01-14T15:30:00Z"},
		{ID: "p2", Depot: 1, Config: hardware("centos-8", "32GB", "1TB"), PushedAt: "2025-01-14T14:20:00Z"},
		{ID: "p3", Depot: 2, Config: hardware("ubuntu-22.04", "128GB", "4TB"), PushedAt: "2025-01-13T09:15:00Z"},
		{ID: "p4", Depot: 4, Config: hardware("debian-11", "64GB", "2TB"), PushedAt: "2025-01-12T16:45:00Z"},
	}
}
