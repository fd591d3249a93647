package mocks

//go:generate sh -c "mockgen -package mocks -destination mac_sap_provider.go github.com/tecs2000/ns3-dualpi2 MacSapProvider"
//go:generate sh -c "mockgen -package mocks -destination sap_user.go github.com/tecs2000/ns3-dualpi2 SapUser"
//go:generate sh -c "goimports -w ."
