package message

// Standard flight table. These layouts are shared out of band with the
// flight computer firmware; changing a width or field order here is a wire
// format change and must ship to every consumer at once. Additional or
// experimental types belong in an external type table file (see
// LoadTypesFile), not here.

// Standard gravity, m/s/s.
const g0 = 9.80665

// ADC scales for the recovery node health board power rails.
const (
	rnhPowerScale = (3.3 / 4096) * (63000.0 / 69800.0)
	rnhUmbScale   = 3.3 / 4096
)

// StandardTypes returns a fresh copy of the compiled-in flight message
// table.
func StandardTypes() []*MessageType {
	return []*MessageType{
		MustMessageType("SEQN", "SequenceNo", []FieldSpec{
			{Name: "Sequence", Kind: UnsignedInt, Width: 4},
		}),

		MustMessageType("ADIS", "ADIS16405", []FieldSpec{
			{Name: "VCC", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.002418}},
			{Name: "Gyro_X", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "hertz", ScaleBy: 0.05}},
			{Name: "Gyro_Y", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "hertz", ScaleBy: 0.05}},
			{Name: "Gyro_Z", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "hertz", ScaleBy: 0.05}},
			{Name: "Acc_X", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "meter/s/s", ScaleBy: 0.00333 * g0}},
			{Name: "Acc_Y", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "meter/s/s", ScaleBy: 0.00333 * g0}},
			{Name: "Acc_Z", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "meter/s/s", ScaleBy: 0.00333 * g0}},
			{Name: "Magn_X", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "tesla", ScaleBy: 5e-8}},
			{Name: "Magn_Y", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "tesla", ScaleBy: 5e-8}},
			{Name: "Magn_Z", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "tesla", ScaleBy: 5e-8}},
			{Name: "Temp", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "degree c", ScaleBy: 0.14, Bias: 25}},
			{Name: "Aux_ADC", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 806}},
		}),

		MustMessageType("MPL3", "MPL3115A2", []FieldSpec{
			{Name: "Pressure", Kind: UnsignedInt, Width: 4, Units: &UnitSpec{MKS: "kPa", ScaleBy: 1.5625e-5}},
			{Name: "Temp", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "degree c", ScaleBy: 1.0 / 256}},
		}),

		MustMessageType("ROLL", "RollServo", []FieldSpec{
			{Name: "Angle", Kind: Double, Width: 8},
			{Name: "Disable", Kind: UnsignedInt, Width: 1},
		}),

		MustMessageType("RNHH", "RNHHealth", []FieldSpec{
			{Name: "Temperature", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "kelvin", ScaleBy: 0.1}},
			{Name: "TS1Temperature", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "degree c", ScaleBy: 0.1}},
			{Name: "TS2Temperature", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "degree c", ScaleBy: 0.1}},
			{Name: "TempRange", Kind: UnsignedInt, Width: 2},
			{Name: "Voltage", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "Current", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: 0.001}},
			{Name: "AverageCurrent", Kind: SignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: 0.001}},
			{Name: "CellVoltage1", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "CellVoltage2", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "CellVoltage3", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "CellVoltage4", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "PackVoltage", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
			{Name: "AverageVoltage", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "volt", ScaleBy: 0.001}},
		}),

		MustMessageType("RNHP", "RNHPower", []FieldSpec{
			{Name: "Port1", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Port2", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Port3", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Port4", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Umbilical", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhUmbScale}},
			{Name: "Port6", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Port7", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
			{Name: "Port8", Kind: UnsignedInt, Width: 2, Units: &UnitSpec{MKS: "amp", ScaleBy: rnhPowerScale}},
		}),

		MustMessageType("RNHU", "RNHUmbilical", []FieldSpec{
			{Name: "Detect", Kind: UnsignedInt, Width: 1},
		}),

		MustMessageType("FCFH", "FCFHealth", []FieldSpec{
			{Name: "CPU_User", Kind: Float, Width: 4},
			{Name: "CPU_System", Kind: Float, Width: 4},
			{Name: "CPU_Nice", Kind: Float, Width: 4},
			{Name: "CPU_IOWait", Kind: Float, Width: 4},
			{Name: "CPU_IRQ", Kind: Float, Width: 4},
			{Name: "CPU_SoftIRQ", Kind: Float, Width: 4},
			{Name: "RAM_Used", Kind: UnsignedInt, Width: 8},
			{Name: "RAM_Buffer", Kind: UnsignedInt, Width: 8},
			{Name: "RAM_Cached", Kind: UnsignedInt, Width: 8},
			{Name: "PID", Kind: UnsignedInt, Width: 2},
			{Name: "Disk_Used", Kind: UnsignedInt, Width: 8},
			{Name: "Disk_Read", Kind: UnsignedInt, Width: 8},
			{Name: "Disk_Write", Kind: UnsignedInt, Width: 8},
			{Name: "IO_lo_Bytes_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_lo_Bytes_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "IO_lo_Packets_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_lo_Packets_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "IO_eth0_Bytes_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_eth0_Bytes_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "IO_eth0_Packets_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_eth0_Packets_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "IO_wlan0_Bytes_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_wlan0_Bytes_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "IO_wlan0_Packets_Sent", Kind: UnsignedInt, Width: 4},
			{Name: "IO_wlan0_Packets_Recv", Kind: UnsignedInt, Width: 4},
			{Name: "Core_Temp", Kind: UnsignedInt, Width: 2},
		}),

		MustMessageType("VERS", "Version", []FieldSpec{
			{Name: "Version", Kind: FixedString, Width: 17},
		}),

		MustMessageType("LTCH", "LaunchTowerComputer", []FieldSpec{
			{Name: "Rocket_Ready", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "volt"}},
			{Name: "Ignition_Relay", Kind: UnsignedInt, Width: 1},
			{Name: "Ignition_Battery", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "volt"}},
			{Name: "Shore_Power_Relay", Kind: UnsignedInt, Width: 1},
			{Name: "Shore_Power", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "volt"}},
			{Name: "Solar_Voltage", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "volt"}},
			{Name: "System_Battery", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "volt"}},
			{Name: "Internal_Temp", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "celsius"}},
			{Name: "External_Temp", Kind: Float, Width: 4, Units: &UnitSpec{MKS: "celsius"}},
			{Name: "Humidity", Kind: Float, Width: 4},
			{Name: "Wind_Speed", Kind: Float, Width: 4},
			{Name: "Wind_Direction", Kind: Float, Width: 4},
			{Name: "Barometric_Pressure", Kind: Float, Width: 4},
		}),
	}
}

// Standard returns a new registry seeded with the compiled-in flight table.
func Standard() *Registry {
	r := NewRegistry()
	for _, t := range StandardTypes() {
		if err := r.Register(t); err != nil {
			// The table is static; a conflict here is a programming error.
			panic(err)
		}
	}
	return r
}
