package collector

import (
	"context"
	"log/slog"

	"github.com/haein/redfish-exporter/internal/redfish"
)

const (
	systemPath       = "/redfish/v1/Systems/1"
	gpuBaseboardPath = "/redfish/v1/Systems/HGX_Baseboard_0"

	fpgaProcessorID = "FPGA_0"
)

// walker executes the fixed traversal plan for one poll cycle. Every
// fetch failure is local: the affected resource or subtree is skipped
// and the rest of the walk continues.
type walker struct {
	client *redfish.Client
	sink   *Sink
	logger *slog.Logger
}

func newWalker(client *redfish.Client, sink *Sink, logger *slog.Logger) *walker {
	return &walker{client: client, sink: sink, logger: logger}
}

func (w *walker) walk(ctx context.Context, profile Profile) {
	if doc, err := w.client.Get(ctx, systemPath); err != nil {
		w.logger.Warn("system resource unavailable", "path", systemPath, "error", err)
	} else {
		w.emitSystem(doc)
		w.walkCollection(ctx, doc, "Processors", w.emitProcessor)
		w.walkCollection(ctx, doc, "Memory", w.emitMemory)
	}

	if profile != ProfileGPU {
		return
	}

	if doc, err := w.client.Get(ctx, gpuBaseboardPath); err != nil {
		w.logger.Warn("GPU baseboard unavailable", "path", gpuBaseboardPath, "error", err)
	} else {
		w.emitGPUSystem(doc)
		w.walkCollection(ctx, doc, "Processors", w.emitGPUProcessor)
		w.walkCollection(ctx, doc, "Memory", w.emitGPUMemory)
	}
}

// walkCollection resolves the named collection link on parent and emits
// one sample per resolvable member. An absent link or failed collection
// fetch skips the subtree silently; a failed member fetch skips only
// that member.
func (w *walker) walkCollection(ctx context.Context, parent map[string]interface{}, link string, emit func(map[string]interface{})) {
	path := SafeGet(parent, link, "@odata.id")
	if path == missingValue {
		return
	}

	collection, err := w.client.Get(ctx, path)
	if err != nil {
		w.logger.Warn("collection fetch failed", "path", path, "error", err)
		return
	}

	for _, memberPath := range redfish.Members(collection) {
		doc, err := w.client.Get(ctx, memberPath)
		if err != nil {
			w.logger.Warn("member fetch failed", "path", memberPath, "error", err)
			continue
		}
		emit(doc)
	}
}

func (w *walker) emitSystem(doc map[string]interface{}) {
	statusHealth := SafeGet(doc, "Status", "Health")
	powerState := SafeGet(doc, "PowerState")

	common := Labels{
		"Id":           SafeGet(doc, "Id"),
		"Manufacturer": SafeGet(doc, "Manufacturer"),
		"Model":        SafeGet(doc, "Model"),
		"PartNumber":   SafeGet(doc, "PartNumber"),
		"SerialNumber": SafeGet(doc, "SerialNumber"),
	}

	health := Labels{"labeltype": "system_health", "Status_Health": statusHealth}
	power := Labels{"labeltype": "system_power", "PowerState": powerState}
	for k, v := range common {
		health[k] = v
		power[k] = v
	}

	w.sink.Add(MapStatus(statusHealth), health)
	w.sink.Add(MapStatus(powerState), power)
}

func (w *walker) emitProcessor(doc map[string]interface{}) {
	labels := Labels{
		"labeltype":             "processor",
		"Status_Health":         SafeGet(doc, "Status", "Health"),
		"Id":                    SafeGet(doc, "Id"),
		"Manufacturer":          SafeGet(doc, "Manufacturer"),
		"InstructionSet":        SafeGet(doc, "InstructionSet"),
		"MaxSpeedMHz":           SafeGet(doc, "MaxSpeedMHz"),
		"Model":                 SafeGet(doc, "Model"),
		"Name":                  SafeGet(doc, "Name"),
		"ProcessorArchitecture": SafeGet(doc, "ProcessorArchitecture"),
		"ProcessorType":         SafeGet(doc, "ProcessorType"),
		"Socket":                SafeGet(doc, "Socket"),
		"TotalCores":            SafeGet(doc, "TotalCores"),
		"TotalThreads":          SafeGet(doc, "TotalThreads"),
	}
	w.sink.Add(MapStatus(labels["Status_Health"]), labels)
}

func (w *walker) emitMemory(doc map[string]interface{}) {
	labels := Labels{
		"labeltype":         "memory",
		"Status_Health":     SafeGet(doc, "Status", "Health"),
		"CapacityMiB":       SafeGet(doc, "CapacityMiB"),
		"DeviceLocator":     SafeGet(doc, "DeviceLocator"),
		"Id":                SafeGet(doc, "Id"),
		"Manufacturer":      SafeGet(doc, "Manufacturer"),
		"Model":             SafeGet(doc, "Model"),
		"MemoryDeviceType":  SafeGet(doc, "MemoryDeviceType"),
		"MemoryType":        SafeGet(doc, "MemoryType"),
		"Name":              SafeGet(doc, "Name"),
		"OperatingSpeedMhz": SafeGet(doc, "OperatingSpeedMhz"),
		"PartNumber":        SafeGet(doc, "PartNumber"),
		"SerialNumber":      SafeGet(doc, "SerialNumber"),
	}
	w.sink.Add(MapStatus(labels["Status_Health"]), labels)
}

func (w *walker) emitGPUSystem(doc map[string]interface{}) {
	statusHealth := SafeGet(doc, "Status", "Health")
	powerState := SafeGet(doc, "PowerState")

	common := Labels{
		"Id":           SafeGet(doc, "Id"),
		"Manufacturer": SafeGet(doc, "Manufacturer"),
	}

	health := Labels{"labeltype": "gpu_system_health", "Status_Health": statusHealth}
	power := Labels{"labeltype": "gpu_system_power", "PowerState": powerState}
	for k, v := range common {
		health[k] = v
		power[k] = v
	}

	w.sink.Add(MapStatus(statusHealth), health)
	w.sink.Add(MapStatus(powerState), power)
}

// emitGPUProcessor emits baseboard processor members. The FPGA member
// carries a reduced label set under its own label type; every other
// member uses the generic processor field set.
func (w *walker) emitGPUProcessor(doc map[string]interface{}) {
	if SafeGet(doc, "Id") == fpgaProcessorID {
		labels := Labels{
			"labeltype":       "gpu_processor",
			"Status_Health":   SafeGet(doc, "Status", "Health"),
			"FirmwareVersion": SafeGet(doc, "FirmwareVersion"),
			"Id":              SafeGet(doc, "Id"),
			"Manufacturer":    SafeGet(doc, "Manufacturer"),
			"Name":            SafeGet(doc, "Name"),
		}
		w.sink.Add(MapStatus(labels["Status_Health"]), labels)
		return
	}

	labels := Labels{
		"labeltype":         "processor",
		"Status_Health":     SafeGet(doc, "Status", "Health"),
		"BaseSpeedMHz":      SafeGet(doc, "BaseSpeedMHz"),
		"FirmwareVersion":   SafeGet(doc, "FirmwareVersion"),
		"Id":                SafeGet(doc, "Id"),
		"Manufacturer":      SafeGet(doc, "Manufacturer"),
		"MaxSpeedMHz":       SafeGet(doc, "MaxSpeedMHz"),
		"Model":             SafeGet(doc, "Model"),
		"Name":              SafeGet(doc, "Name"),
		"OperatingSpeedMHz": SafeGet(doc, "OperatingSpeedMHz"),
		"PartNumber":        SafeGet(doc, "PartNumber"),
		"ProcessorType":     SafeGet(doc, "ProcessorType"),
		"SerialNumber":      SafeGet(doc, "SerialNumber"),
		"TotalThreads":      SafeGet(doc, "TotalThreads"),
	}
	w.sink.Add(MapStatus(labels["Status_Health"]), labels)
}

func (w *walker) emitGPUMemory(doc map[string]interface{}) {
	labels := Labels{
		"labeltype":         "gpu_memory",
		"Status_Health":     SafeGet(doc, "Status", "Health"),
		"CapacityMiB":       SafeGet(doc, "CapacityMiB"),
		"Id":                SafeGet(doc, "Id"),
		"MemoryDeviceType":  SafeGet(doc, "MemoryDeviceType"),
		"MemoryType":        SafeGet(doc, "MemoryType"),
		"Name":              SafeGet(doc, "Name"),
		"OperatingSpeedMhz": SafeGet(doc, "OperatingSpeedMhz"),
	}
	w.sink.Add(MapStatus(labels["Status_Health"]), labels)
}
