/*Command maf-query answers one region query against a TAF or MafTabix
  alignment file and prints the result to stdout, either as raw block rows
  or as materialized per-sample FASTA. BigMaf files are not supported by
  this command.

  Usage:
    maf-query -taf foo.taf.gz -tai foo.tai -ref chr1 -start 1000 -end 2000
    maf-query -bedgz foo.bed.gz -ref chr1 -start 1000 -end 2000 -format fasta -samples hg38,mm10
*/
package main
