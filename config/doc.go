/*
Package config loads the file transfer drivers' configuration from an
XML document.

A document overlays the defaults returned by Default; any element or
attribute it omits keeps its default value:

	<filexfer>
	  <server network="tcp" address="127.0.0.1:1234" root="."/>
	  <client network="tcp" address="127.0.0.1:1234">
	    <request>test1.txt</request>
	    <request>test2.txt</request>
	  </client>
	  <kcp data-shards="10" parity-shards="3" key="secret" salt="filexfer"/>
	</filexfer>

When the client element has request children, they replace the default
request list. The kcp element only takes effect for the "kcp" network.
*/
package config
